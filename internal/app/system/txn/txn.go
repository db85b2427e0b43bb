// Package txn runs multi-document writes inside a MongoDB transaction when the
// deployment supports them, and falls back to sequential writes on a
// standalone server (local development, CI).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions are unavailable.
const (
	codeIllegalOperation         = 20
	codeNoSuchTransaction        = 51
	codeOperationNotSupportedTxn = 263
)

var notSupportedKeywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err means the server cannot run
// transactions. Message matching requires two keywords so that ordinary
// errors mentioning a single word do not trigger the fallback.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoSuchTransaction, codeOperationNotSupportedTxn:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}

// Run executes fn inside a transaction on db's client. The ctx passed to fn
// carries the session; every collection call in fn must use it.
//
// If the server rejects transactions, fn is run once more without one.
// fn must therefore do its checks before its first write.
func Run(ctx context.Context, db *mongo.Database, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if logger != nil {
			logger.Debug("transactions unavailable; running without one", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}
