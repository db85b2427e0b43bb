package attendancestore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *Store) normalizeKey(k *models.SessionKey) error {
	d, err := dates.Parse("date", k.Date)
	if err != nil {
		return err
	}
	k.Date = d
	if !k.SessionType.Valid() {
		return apperr.Invalid("session_type", "must be FN, AN or Period")
	}
	if k.SessionType != models.SessionPeriod {
		k.Period = 0
	} else if k.Period < 1 {
		return apperr.Invalid("period", "must be at least 1 for period sessions")
	}
	return nil
}

// canLock allows admins, and teachers whose own records make up the whole
// session.
func (s *Store) canLock(ctx context.Context, actor authz.Actor, k models.SessionKey) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsTeacher() {
		return apperr.Forbidden("only teachers and admins lock sessions")
	}
	tc, err := s.roster.TeacherByUserID(ctx, actor.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Forbidden("no teacher profile is linked to this account")
		}
		return err
	}
	f := keyFilter(k)
	f["teacher_id"] = bson.M{"$ne": tc.ID}
	n, err := s.c.CountDocuments(ctx, f)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Forbidden("session was recorded by another teacher")
	}
	return nil
}

// LockSession freezes every record under k and returns how many were
// locked. A key with no records is a NotFoundError.
func (s *Store) LockSession(ctx context.Context, actor authz.Actor, k models.SessionKey) (int64, error) {
	if err := s.normalizeKey(&k); err != nil {
		return 0, err
	}
	if err := s.canLock(ctx, actor, k); err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx, keyFilter(k), bson.M{"$set": bson.M{
		"is_locked": true,
		"locked_at": now,
		"locked_by": actor.ID,
	}})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, apperr.NotFound("session", sessionLabel(k))
	}
	s.log.Info("attendance session locked", zap.String("session", sessionLabel(k)), zap.Int64("records", res.MatchedCount))
	return res.MatchedCount, nil
}

// UnlockSession reopens k for recording. Admin only.
func (s *Store) UnlockSession(ctx context.Context, actor authz.Actor, k models.SessionKey) (int64, error) {
	if err := s.normalizeKey(&k); err != nil {
		return 0, err
	}
	if !actor.IsAdmin() {
		return 0, apperr.Forbidden("only admins unlock sessions")
	}
	res, err := s.c.UpdateMany(ctx, keyFilter(k), bson.M{
		"$set":   bson.M{"is_locked": false},
		"$unset": bson.M{"locked_at": "", "locked_by": ""},
	})
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, apperr.NotFound("session", sessionLabel(k))
	}
	s.log.Info("attendance session unlocked", zap.String("session", sessionLabel(k)), zap.Int64("records", res.MatchedCount))
	return res.MatchedCount, nil
}

func sessionLabel(k models.SessionKey) string {
	return fmt.Sprintf("%s %s %s/%d", k.SubjectID.Hex(), k.Date, k.SessionType, k.Period)
}
