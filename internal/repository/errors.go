package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"chirper/internal/database"
	"chirper/internal/model"
)

// storeErr wraps err with op, marking connectivity failures as transient.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return model.Transient(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57": // connection, resources, operator intervention
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// duplicateUserErr maps a unique-index violation on users to a conflict error.
// The index or constraint name tells which field collided. The Mongo message
// also carries the duplicate value, so only the "index: <name> " part is matched.
func duplicateUserErr(err error) error {
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == "23505":
		if pqErr.Constraint == database.UsersEmailConstraint {
			return model.ErrEmailExists
		}
		return model.ErrUsernameExists
	case mongo.IsDuplicateKeyError(err):
		if strings.Contains(err.Error(), "index: "+database.EmailIndex+" ") {
			return model.ErrEmailExists
		}
		return model.ErrUsernameExists
	default:
		return nil
	}
}
