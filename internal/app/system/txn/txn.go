// internal/app/system/txn/txn.go

// Package txn wraps multi-document writes in a MongoDB transaction so that
// paired mutations (join-request resolution + membership upsert, vote upsert
// + counter adjustment, comment insert + counter increment) commit as one
// unit or not at all.
//
// Standalone mongod instances (local dev, CI) do not support transactions.
// When the server rejects the session, Run falls back to executing the
// function without one and logs the downgrade once per call.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a MongoDB transaction on db's client. fn receives a
// session-bound context and must pass it to every collection operation that
// belongs to the transaction.
//
// If the deployment does not support transactions, fn runs directly with the
// original context. The paired writes then rely on the unique indexes for
// correctness, which covers the insert races but not partial failure; the
// counter reconcile operation exists to repair that case.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	client := db.Client()

	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("mongo sessions unavailable; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Warn("mongo transactions unavailable; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate the deployment cannot run transactions.
//
//	20  IllegalOperation (transaction numbers only on replica set members)
//	51  device/operation not supported
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err means the server cannot run the
// requested session or transaction (as opposed to the transaction failing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ce, ok := err.(mongo.CommandError); ok {
		cmdErr = ce
	}
	if notSupportedCodes[cmdErr.Code] {
		return true
	}

	// Driver and server wrap the condition in several message shapes; match
	// on keyword pairs rather than exact strings.
	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasSession && strings.Contains(msg, "not supported"):
		return true
	case hasTxn && hasSession:
		return true
	case strings.Contains(msg, "illegal operation") && hasTxn:
		return true
	}
	return false
}
