// Package attendancequeries computes attendance percentages, subject
// breakdowns and defaulter lists with aggregation over the ledger.
//
// Only Present, Late and OD count as attended, regardless of which
// statuses a deployment accepts.
package attendancequeries

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	recordsColl  = "attendance_records"
	studentsColl = "students"
	subjectsColl = "subjects"
)

// Scope narrows a percentage. Zero fields are ignored; From and To are
// inclusive dates.
type Scope struct {
	SubjectID primitive.ObjectID
	From      string
	To        string
}

// Counts is a total/attended pair with its rounded percentage.
type Counts struct {
	Total      int64   `bson:"total" json:"total"`
	Attended   int64   `bson:"attended" json:"attended"`
	Percentage float64 `bson:"-" json:"percentage"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func pct(attended, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(attended) * 100 / float64(total))
}

func attendedStatuses() bson.A {
	a := bson.A{}
	for _, s := range models.AttendedStatuses {
		a = append(a, string(s))
	}
	return a
}

// groupCounts returns the $group stage summing total and attended records.
func groupCounts(key any) bson.M {
	return bson.M{
		"_id":   key,
		"total": bson.M{"$sum": 1},
		"attended": bson.M{"$sum": bson.M{
			"$cond": bson.A{bson.M{"$in": bson.A{"$status", attendedStatuses()}}, 1, 0},
		}},
	}
}

func (sc Scope) match(studentID primitive.ObjectID) (bson.M, error) {
	from, err := dates.ParseOptional("from", sc.From)
	if err != nil {
		return nil, err
	}
	to, err := dates.ParseOptional("to", sc.To)
	if err != nil {
		return nil, err
	}
	if from != "" && to != "" && to < from {
		return nil, apperr.Invalid("to", "must not be before from")
	}

	m := bson.M{"student_id": studentID}
	if !sc.SubjectID.IsZero() {
		m["subject_id"] = sc.SubjectID
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

// Percentage returns the student's attended/total counts within sc. A
// student with no records gets zero counts and 0%.
func Percentage(ctx context.Context, db *mongo.Database, studentID primitive.ObjectID, sc Scope) (Counts, error) {
	match, err := sc.match(studentID)
	if err != nil {
		return Counts{}, err
	}

	cur, err := db.Collection(recordsColl).Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": groupCounts(nil)},
	})
	if err != nil {
		return Counts{}, err
	}
	defer cur.Close(ctx)

	var c Counts
	if cur.Next(ctx) {
		if err := cur.Decode(&c); err != nil {
			return Counts{}, err
		}
	}
	if err := cur.Err(); err != nil {
		return Counts{}, err
	}
	c.Percentage = pct(c.Attended, c.Total)
	return c, nil
}

// countsBy groups records matching match by field and returns counts per
// distinct value.
func countsBy(ctx context.Context, db *mongo.Database, match bson.M, field string) (map[primitive.ObjectID]Counts, error) {
	cur, err := db.Collection(recordsColl).Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": groupCounts("$" + field)},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[primitive.ObjectID]Counts)
	for cur.Next(ctx) {
		var row struct {
			ID       primitive.ObjectID `bson:"_id"`
			Total    int64              `bson:"total"`
			Attended int64              `bson:"attended"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = Counts{Total: row.Total, Attended: row.Attended, Percentage: pct(row.Attended, row.Total)}
	}
	return out, cur.Err()
}

func loadStudent(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*models.Student, error) {
	var st models.Student
	err := db.Collection(studentsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("student", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SubjectRow is one line of a student's subject breakdown.
type SubjectRow struct {
	SubjectID   primitive.ObjectID `json:"subject_id"`
	SubjectCode string             `json:"subject_code"`
	SubjectName string             `json:"subject_name"`
	SubjectType string             `json:"subject_type"`
	Total       int64              `json:"total"`
	Present     int64              `json:"present"`
	Percentage  float64            `json:"percentage"`
}

// SubjectBreakdown returns one row per subject of the student's program
// and current semester, ordered by subject code. Subjects without records
// appear with zeros. Present counts every attended status.
func SubjectBreakdown(ctx context.Context, db *mongo.Database, studentID primitive.ObjectID) ([]SubjectRow, error) {
	st, err := loadStudent(ctx, db, studentID)
	if err != nil {
		return nil, err
	}

	cur, err := db.Collection(subjectsColl).Find(ctx,
		bson.M{"program_id": st.ProgramID, "semester": st.Semester},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var subjects []models.Subject
	if err := cur.All(ctx, &subjects); err != nil {
		return nil, err
	}

	rows := make([]SubjectRow, 0, len(subjects))
	if len(subjects) == 0 {
		return rows, nil
	}
	ids := make([]primitive.ObjectID, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}

	counts, err := countsBy(ctx, db, bson.M{"student_id": studentID, "subject_id": bson.M{"$in": ids}}, "subject_id")
	if err != nil {
		return nil, err
	}
	for _, s := range subjects {
		c := counts[s.ID]
		rows = append(rows, SubjectRow{
			SubjectID:   s.ID,
			SubjectCode: s.Code,
			SubjectName: s.Name,
			SubjectType: s.SubjectType,
			Total:       c.Total,
			Present:     c.Attended,
			Percentage:  c.Percentage,
		})
	}
	return rows, nil
}

// StudentRow is a student with their overall attendance.
type StudentRow struct {
	StudentID  primitive.ObjectID `json:"student_id"`
	RollNumber string             `json:"roll_number"`
	Name       string             `json:"name"`
	ProgramID  primitive.ObjectID `json:"program_id"`
	Semester   int                `json:"semester"`
	Batch      string             `json:"batch"`
	Division   string             `json:"division"`
	Total      int64              `json:"total"`
	Attended   int64              `json:"attended"`
	Percentage float64            `json:"percentage"`
}

// Cohort narrows StudentReport and Defaulters to part of the student body.
type Cohort struct {
	ProgramID primitive.ObjectID
	Semester  int
	Batch     string
	Division  string
}

func (c Cohort) filter() bson.M {
	m := bson.M{"status": models.StatusActive}
	if !c.ProgramID.IsZero() {
		m["program_id"] = c.ProgramID
	}
	if c.Semester > 0 {
		m["semester"] = c.Semester
	}
	if b := normalize.Label(c.Batch); b != "" {
		m["batch"] = b
	}
	if d := normalize.Label(c.Division); d != "" {
		m["division"] = d
	}
	return m
}

// StudentReport returns every active student in the cohort with their
// overall percentage, ordered by roll number. It reads the students once
// and runs one aggregation over the ledger.
func StudentReport(ctx context.Context, db *mongo.Database, cohort Cohort) ([]StudentRow, error) {
	cur, err := db.Collection(studentsColl).Find(ctx, cohort.filter(),
		options.Find().SetSort(bson.D{{Key: "roll_number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, err
	}

	rows := make([]StudentRow, 0, len(students))
	if len(students) == 0 {
		return rows, nil
	}
	ids := make([]primitive.ObjectID, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	counts, err := countsBy(ctx, db, bson.M{"student_id": bson.M{"$in": ids}}, "student_id")
	if err != nil {
		return nil, err
	}
	for _, s := range students {
		c := counts[s.ID]
		rows = append(rows, StudentRow{
			StudentID:  s.ID,
			RollNumber: s.RollNumber,
			Name:       s.Name,
			ProgramID:  s.ProgramID,
			Semester:   s.Semester,
			Batch:      s.Batch,
			Division:   s.Division,
			Total:      c.Total,
			Attended:   c.Attended,
			Percentage: c.Percentage,
		})
	}
	return rows, nil
}

// Defaulters returns active students whose overall percentage is strictly
// below threshold, lowest first and then by roll number. Students with no
// records are included at 0%.
func Defaulters(ctx context.Context, db *mongo.Database, threshold float64, cohort Cohort) ([]StudentRow, error) {
	if threshold < 0 || threshold > 100 || math.IsNaN(threshold) {
		return nil, apperr.Invalid("threshold", "must be between 0 and 100")
	}
	all, err := StudentReport(ctx, db, cohort)
	if err != nil {
		return nil, err
	}
	out := make([]StudentRow, 0, len(all))
	for _, r := range all {
		if r.Percentage < threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage < out[j].Percentage
		}
		return out[i].RollNumber < out[j].RollNumber
	})
	return out, nil
}
