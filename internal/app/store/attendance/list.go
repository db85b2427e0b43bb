package attendancestore

import (
	"context"

	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/paging"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Filter narrows ListRecords. Zero fields are ignored; From and To are
// inclusive.
type Filter struct {
	StudentID primitive.ObjectID
	SubjectID primitive.ObjectID
	TeacherID primitive.ObjectID
	From      string
	To        string
}

// Page is one window of records plus the cursor for the next one.
type Page struct {
	Records    []models.AttendanceRecord `json:"records"`
	NextCursor string                    `json:"next_cursor,omitempty"`
}

func (f Filter) toBSON() (bson.M, error) {
	from, err := dates.ParseOptional("from", f.From)
	if err != nil {
		return nil, err
	}
	to, err := dates.ParseOptional("to", f.To)
	if err != nil {
		return nil, err
	}

	m := bson.M{}
	if !f.StudentID.IsZero() {
		m["student_id"] = f.StudentID
	}
	if !f.SubjectID.IsZero() {
		m["subject_id"] = f.SubjectID
	}
	if !f.TeacherID.IsZero() {
		m["teacher_id"] = f.TeacherID
	}
	if from != "" || to != "" {
		d := bson.M{}
		if from != "" {
			d["$gte"] = from
		}
		if to != "" {
			d["$lte"] = to
		}
		m["date"] = d
	}
	return m, nil
}

// ListRecords returns records matching f, newest date first. limit <= 0
// uses the configured page size. cursor is the NextCursor of the previous
// page; an unreadable cursor restarts from the first page.
func (s *Store) ListRecords(ctx context.Context, f Filter, cursor string, limit int) (Page, error) {
	filter, err := f.toBSON()
	if err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	limit = paging.Clamp(limit)

	if win := paging.DescendingWindow("date", cursor); win != nil {
		filter = bson.M{"$and": []bson.M{filter, win}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit + 1))

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	rows := []models.AttendanceRecord{}
	if err := cur.All(ctx, &rows); err != nil {
		return Page{}, err
	}
	hasNext := paging.TrimPage(&rows, limit)
	return Page{
		Records: rows,
		NextCursor: paging.NextCursor(rows, hasNext,
			func(r models.AttendanceRecord) string { return r.Date },
			func(r models.AttendanceRecord) primitive.ObjectID { return r.ID }),
	}, nil
}
