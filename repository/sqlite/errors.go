package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sorayamlj/FocusTache/domain"
)

// writeError classifies a failed write. Constraint failures are final and
// surface as domain errors; a busy, locked or unreachable database is
// reported as unavailable so the write may be retried later.
func writeError(op string, err error) error {
	var serr *moderncsqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		switch code & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY || strings.Contains(serr.Error(), "FOREIGN KEY") {
				return domain.MissingParent()
			}
			return domain.StoreConflict(fmt.Errorf("%s: %w", op, err))
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN:
			return domain.StoreUnavailable(fmt.Errorf("%s: %w", op, err))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return domain.StoreUnavailable(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
