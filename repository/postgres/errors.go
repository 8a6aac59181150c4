package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sorayamlj/FocusTache/domain"
)

const foreignKeyViolation = "23503"

// writeError classifies a failed write. Integrity violations (SQLSTATE class
// 23) are final and surface as domain errors; connection failures, timeouts
// and server shutdowns are reported as unavailable so the write may be
// retried later.
func writeError(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == foreignKeyViolation:
			return domain.MissingParent()
		case strings.HasPrefix(pgErr.Code, "23"):
			return domain.StoreConflict(wrapped)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "53"), strings.HasPrefix(pgErr.Code, "57P"):
			return domain.StoreUnavailable(wrapped)
		}
		return wrapped
	}

	var netErr net.Error
	var connectErr *pgconn.ConnectError
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) ||
		errors.As(err, &netErr) || errors.As(err, &connectErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return domain.StoreUnavailable(wrapped)
	}
	return wrapped
}
