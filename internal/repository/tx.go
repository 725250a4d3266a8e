package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type mongoTxRunner struct {
	client  *mongo.Client
	enabled bool
}

// NewMongoTxRunner returns a runner backed by client sessions. Multi-document
// transactions need a replica set; with enabled false fn runs directly.
func NewMongoTxRunner(client *mongo.Client, enabled bool) TxRunner {
	return &mongoTxRunner{client: client, enabled: enabled}
}

func (r *mongoTxRunner) Transactional() bool { return r.enabled }

func (r *mongoTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.enabled {
		return fn(ctx)
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return storeErr("start session", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type txKey struct{}

type postgresTxRunner struct {
	db *sqlx.DB
}

// NewPostgresTxRunner returns a runner that carries a *sqlx.Tx in the context.
func NewPostgresTxRunner(db *sqlx.DB) TxRunner {
	return &postgresTxRunner{db: db}
}

func (r *postgresTxRunner) Transactional() bool { return true }

func (r *postgresTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// executor returns the transaction carried by ctx, or db.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
