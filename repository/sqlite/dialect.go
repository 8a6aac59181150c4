package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sorayamlj/FocusTache/repository"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type dialect struct{}

// Dialect renders task queries for SQLite. Numbered placeholders let an
// argument be referenced more than once.
var Dialect repository.Dialect = dialect{}

func (dialect) Placeholder(n int) string { return fmt.Sprintf("?%d", n) }

func (dialect) HasOwner(arg string) string {
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(tasks.owners) WHERE json_each.value = %s)", arg)
}

func (dialect) ContainsFold(column, arg string) string {
	return fmt.Sprintf("instr(lower(%s), lower(%s)) > 0", column, arg)
}

func (d dialect) Matches(arg string) string {
	return fmt.Sprintf("(%s OR %s OR %s OR %s)",
		d.ContainsFold("title", arg),
		d.ContainsFold("module", arg),
		d.ContainsFold("tags", arg),
		d.ContainsFold("description", arg),
	)
}

// Rank scores title, module, tags and description matches as 10, 5, 3 and 1.
func (d dialect) Rank(arg string) string {
	return fmt.Sprintf(`(CASE WHEN %s THEN 10 ELSE 0 END +
		CASE WHEN %s THEN 5 ELSE 0 END +
		CASE WHEN %s THEN 3 ELSE 0 END +
		CASE WHEN %s THEN 1 ELSE 0 END)`,
		d.ContainsFold("title", arg),
		d.ContainsFold("module", arg),
		d.ContainsFold("tags", arg),
		d.ContainsFold("description", arg),
	)
}

func (dialect) Time(t time.Time) interface{} { return formatTime(t) }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
