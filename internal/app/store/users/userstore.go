package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// MinPasswordLength is the shortest password Create accepts.
const MinPasswordLength = 6

var (
	// ErrDuplicateLoginID is returned when the folded login id is taken.
	ErrDuplicateLoginID = errors.New("a user with this login id already exists")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")

	errBadRole     = errors.New(`role must be "admin"|"teacher"|"student"`)
	errBadStatus   = errors.New(`status must be "active"|"disabled"|"locked"`)
	errNoLoginID   = errors.New("login id is required")
	errShortSecret = errors.New("password is too short")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// HashPassword returns the bcrypt hash stored for password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches u's stored hash.
func CheckPassword(u *models.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func validRole(r string) bool {
	return r == models.RoleAdmin || r == models.RoleTeacher || r == models.RoleStudent
}

func validStatus(s string) bool {
	return s == models.UserActive || s == models.UserDisabled || s == models.UserLocked
}

// Create normalizes and validates u, hashes password and inserts the user.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.LoginID = normalize.LoginID(u.LoginID)
	u.LoginIDCI = text.Fold(u.LoginID)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Status == "" {
		u.Status = models.UserActive
	}

	if u.LoginID == "" {
		return models.User{}, errNoLoginID
	}
	if !validRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !validStatus(u.Status) {
		return models.User{}, errBadStatus
	}
	if len(password) < MinPasswordLength {
		return models.User{}, errShortSecret
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateLoginID
		}
		return models.User{}, err
	}
	return u, nil
}

// IsInputError reports whether err came from Create's field validation.
func IsInputError(err error) bool {
	return errors.Is(err, errBadRole) || errors.Is(err, errBadStatus) ||
		errors.Is(err, errNoLoginID) || errors.Is(err, errShortSecret)
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByLoginID looks a user up by case-insensitive login id.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"login_id_ci": text.Fold(normalize.LoginID(loginID))}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// RecordFailedLogin bumps the user's consecutive failure count and locks
// the account once it reaches maxAttempts. It returns the new count and
// whether this call locked the account.
func (s *Store) RecordFailedLogin(ctx context.Context, id primitive.ObjectID, maxAttempts int) (int, bool, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"failed_attempts": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, false, ErrNotFound
		}
		return 0, false, err
	}

	if maxAttempts <= 0 || u.FailedAttempts < maxAttempts || u.Status != models.UserActive {
		return u.FailedAttempts, false, nil
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.UserActive},
		bson.M{"$set": bson.M{"status": models.UserLocked}},
	)
	if err != nil {
		return u.FailedAttempts, false, err
	}
	return u.FailedAttempts, res.ModifiedCount == 1, nil
}

// RecordSuccessfulLogin resets the failure count and stamps last_login_at.
func (s *Store) RecordSuccessfulLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"failed_attempts": 0,
		"last_login_at":   now,
		"updated_at":      now,
	}})
	return err
}

// SetStatus changes the account status. Re-activating clears the failure count.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !validStatus(status) {
		return errBadStatus
	}
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if status == models.UserActive {
		set["failed_attempts"] = 0
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRole returns users with role, ordered by name. An empty role lists everyone.
func (s *Store) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = normalize.Role(role)
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap admin when no user holds loginID.
// It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, loginID, password, email string) (bool, error) {
	if _, err := s.GetByLoginID(ctx, loginID); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	_, err := s.Create(ctx, models.User{
		LoginID:  loginID,
		FullName: "Administrator",
		Email:    email,
		Role:     models.RoleAdmin,
	}, password)
	if errors.Is(err, ErrDuplicateLoginID) {
		// another instance created it first
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
