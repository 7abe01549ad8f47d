package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStoreUnavailable marks failures where the store could not be reached
// and the operation may succeed if retried.
var ErrStoreUnavailable = errors.New("data store temporarily unavailable")

// Classify wraps connection and timeout failures with ErrStoreUnavailable.
// Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// serialization_failure, deadlock_detected, too_many_connections, admin_shutdown, cannot_connect_now
		case "40001", "40P01", "53300", "57P01", "57P03":
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	return err
}
