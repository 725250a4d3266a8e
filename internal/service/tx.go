package service

import (
	"context"

	"go.uber.org/zap"

	"chirper/internal/repository"
)

// compensate undoes already-applied writes after a later write in the same
// logical operation failed. It does nothing when the store rolled back.
func compensate(ctx context.Context, tx repository.TxRunner, log *zap.Logger, op string, steps ...func(ctx context.Context) error) {
	if tx.Transactional() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, step := range steps {
		if err := step(ctx); err != nil {
			// Leaves the two sides of a relationship out of step.
			log.Error("compensating write failed", zap.String("op", op), zap.Error(err))
		}
	}
}
