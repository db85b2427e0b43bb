package rosterstore

import (
	"context"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddSlot validates and inserts a weekly timetable slot.
func (s *Store) AddSlot(ctx context.Context, slot models.TimetableSlot) (models.TimetableSlot, error) {
	slot.ID = primitive.NewObjectID()
	slot.Room = htmlsanitize.PlainText(slot.Room)
	slot.Batch = normalize.Label(slot.Batch)
	slot.Division = normalize.Label(slot.Division)
	if slot.SessionType == "" {
		slot.SessionType = models.SessionPeriod
	}

	switch {
	case !models.ValidWeekday(slot.Day):
		return models.TimetableSlot{}, apperr.Invalid("day", "must be a weekday name such as Monday")
	case !slot.SessionType.Valid():
		return models.TimetableSlot{}, apperr.Invalid("session_type", "must be FN, AN or Period")
	case slot.SessionType == models.SessionPeriod && slot.Period < 1:
		return models.TimetableSlot{}, apperr.Invalid("period", "must be at least 1")
	}
	if slot.SessionType != models.SessionPeriod {
		slot.Period = 0
	}

	if _, err := s.GetTeacher(ctx, slot.TeacherID); err != nil {
		return models.TimetableSlot{}, err
	}
	if _, err := s.GetSubject(ctx, slot.SubjectID); err != nil {
		return models.TimetableSlot{}, err
	}

	if _, err := s.timetable.InsertOne(ctx, slot); err != nil {
		return models.TimetableSlot{}, err
	}
	return slot, nil
}

// SlotsForTeacherOnDay returns a teacher's slots for one weekday ordered
// by period.
func (s *Store) SlotsForTeacherOnDay(ctx context.Context, teacherID primitive.ObjectID, day string) ([]models.TimetableSlot, error) {
	return findAll[models.TimetableSlot](ctx, s.timetable,
		bson.M{"teacher_id": teacherID, "day": day},
		options.Find().SetSort(bson.D{{Key: "period", Value: 1}}))
}

// ListSlots returns every slot, optionally for one teacher, ordered by
// weekday position then period.
func (s *Store) ListSlots(ctx context.Context, teacherID primitive.ObjectID) ([]models.TimetableSlot, error) {
	filter := bson.M{}
	if !teacherID.IsZero() {
		filter["teacher_id"] = teacherID
	}
	rows, err := findAll[models.TimetableSlot](ctx, s.timetable, filter,
		options.Find().SetSort(bson.D{{Key: "period", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return sortByWeekday(rows), nil
}

func sortByWeekday(rows []models.TimetableSlot) []models.TimetableSlot {
	out := make([]models.TimetableSlot, 0, len(rows))
	for _, day := range models.Weekdays {
		for _, r := range rows {
			if r.Day == day {
				out = append(out, r)
			}
		}
	}
	return out
}
