package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateProgram creates a UG program with the given code.
func (f *Fixtures) CreateProgram(ctx context.Context, code string) models.Program {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Program{
		ID:        primitive.NewObjectID(),
		Name:      "Program " + code,
		NameCI:    text.Fold("Program " + code),
		Code:      code,
		Type:      models.ProgramUG,
		Duration:  3,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "programs", p)
	return p
}

// CreateStudent creates an active student.
func (f *Fixtures) CreateStudent(ctx context.Context, roll string, programID primitive.ObjectID, semester int, batch, division string) models.Student {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.Student{
		ID:         primitive.NewObjectID(),
		RollNumber: roll,
		Name:       "Student " + roll,
		NameCI:     text.Fold("Student " + roll),
		ProgramID:  programID,
		Batch:      batch,
		Division:   division,
		Semester:   semester,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "students", s)
	return s
}

// SetStudentStatus overwrites a student's status.
func (f *Fixtures) SetStudentStatus(ctx context.Context, id primitive.ObjectID, status string) {
	f.t.Helper()
	_, err := f.db.Collection("students").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		f.t.Fatalf("failed to set student status: %v", err)
	}
}

// LinkStudentUser binds a student record to a login account.
func (f *Fixtures) LinkStudentUser(ctx context.Context, studentID, userID primitive.ObjectID) {
	f.t.Helper()
	_, err := f.db.Collection("students").UpdateOne(ctx, bson.M{"_id": studentID}, bson.M{"$set": bson.M{"user_id": userID}})
	if err != nil {
		f.t.Fatalf("failed to link student user: %v", err)
	}
}

// CreateTeacher creates an active teacher, optionally bound to a login.
func (f *Fixtures) CreateTeacher(ctx context.Context, name string, userID *primitive.ObjectID) models.Teacher {
	f.t.Helper()
	now := time.Now().UTC()
	tc := models.Teacher{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        name,
		NameCI:      text.Fold(name),
		TeacherType: models.TeacherMajor,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "teachers", tc)
	return tc
}

// CreateSubject creates a theory subject in the given program and semester.
func (f *Fixtures) CreateSubject(ctx context.Context, code string, programID primitive.ObjectID, semester int) models.Subject {
	f.t.Helper()
	s := models.Subject{
		ID:          primitive.NewObjectID(),
		Code:        code,
		Name:        "Subject " + code,
		Credits:     4,
		SubjectType: "Major",
		ClassType:   "Theory",
		ProgramID:   programID,
		Semester:    semester,
	}
	f.insert(ctx, "subjects", s)
	return s
}

// Assign links a teacher to a subject for a batch and division.
func (f *Fixtures) Assign(ctx context.Context, teacherID, subjectID primitive.ObjectID, batch, division string, semester int) models.TeacherSubject {
	f.t.Helper()
	a := models.TeacherSubject{
		ID:        primitive.NewObjectID(),
		TeacherID: teacherID,
		SubjectID: subjectID,
		Batch:     batch,
		Division:  division,
		Semester:  semester,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "teacher_subjects", a)
	return a
}

// CreateUser creates an active login with the given password.
func (f *Fixtures) CreateUser(ctx context.Context, loginID, password, role string) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		LoginID:      loginID,
		LoginIDCI:    text.Fold(loginID),
		FullName:     "User " + loginID,
		FullNameCI:   text.Fold("User " + loginID),
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateLeave creates a leave request with the given status.
func (f *Fixtures) CreateLeave(ctx context.Context, studentID primitive.ObjectID, from, to, status string) models.LeaveRequest {
	f.t.Helper()
	now := time.Now().UTC()
	l := models.LeaveRequest{
		ID:        primitive.NewObjectID(),
		RefCode:   primitive.NewObjectID().Hex(),
		StudentID: studentID,
		FromDate:  from,
		ToDate:    to,
		LeaveType: "Medical",
		Status:    status,
		AppliedBy: studentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "leave_requests", l)
	return l
}

// InsertRecord writes an attendance record directly, bypassing validation.
// ID and MarkedAt are filled when zero.
func (f *Fixtures) InsertRecord(ctx context.Context, rec models.AttendanceRecord) models.AttendanceRecord {
	f.t.Helper()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	f.insert(ctx, "attendance_records", rec)
	return rec
}
