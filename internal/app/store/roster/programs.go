package rosterstore

import (
	"context"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/normalize"
	"github.com/dalemusser/attendhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateProgram validates and inserts p. Code is upper-cased and unique.
func (s *Store) CreateProgram(ctx context.Context, p models.Program) (models.Program, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Code = normalize.Code(p.Code)
	p.Type = normalize.Code(p.Type)

	switch {
	case p.Name == "":
		return models.Program{}, apperr.Invalid("name", "is required")
	case p.Code == "":
		return models.Program{}, apperr.Invalid("code", "is required")
	case p.Type != models.ProgramUG && p.Type != models.ProgramPG:
		return models.Program{}, apperr.Invalid("type", "must be UG or PG")
	case p.Duration < 1:
		return models.Program{}, apperr.Invalid("duration", "must be at least 1 semester")
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.programs.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Program{}, ErrDuplicateProgramCode
		}
		return models.Program{}, err
	}
	return p, nil
}

// GetProgram loads a program or returns a NotFoundError.
func (s *Store) GetProgram(ctx context.Context, id primitive.ObjectID) (*models.Program, error) {
	var p models.Program
	if err := findByID(ctx, s.programs, "program", id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrograms returns all programs ordered by code.
func (s *Store) ListPrograms(ctx context.Context) ([]models.Program, error) {
	return findAll[models.Program](ctx, s.programs, bson.M{},
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
}

