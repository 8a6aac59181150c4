package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/sorayamlj/FocusTache/domain"
)

// Dialect renders the store-specific fragments of a task query.
type Dialect interface {
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string
	// HasOwner tests membership of the bound email in the owners column.
	HasOwner(arg string) string
	// ContainsFold is a case-insensitive substring match of column on arg.
	ContainsFold(column, arg string) string
	// Matches is the full-text predicate for the bound search text.
	Matches(arg string) string
	// Rank is the relevance expression for the bound search text.
	Rank(arg string) string
	// Time converts an instant into the value the store compares against.
	Time(t time.Time) interface{}
}

// Where is a rendered WHERE clause and its arguments.
type Where struct {
	Clause string
	Args   []interface{}
}

type whereBuilder struct {
	dialect Dialect
	conds   []string
	args    []interface{}
}

func (b *whereBuilder) bind(value interface{}) string {
	b.args = append(b.args, value)
	return b.dialect.Placeholder(len(b.args))
}

func (b *whereBuilder) add(cond string) {
	b.conds = append(b.conds, cond)
}

// BuildTaskWhere renders the filter of q. The default non-deleted filter is
// applied here and nowhere else.
func BuildTaskWhere(q TaskQuery, dialect Dialect) Where {
	b := &whereBuilder{dialect: dialect}

	if q.Owner != "" {
		b.add(dialect.HasOwner(b.bind(q.Owner)))
	}
	if q.Creator != "" {
		b.add("creator = " + b.bind(q.Creator))
	}
	if len(q.Statuses) > 0 {
		marks := make([]string, 0, len(q.Statuses))
		for _, status := range q.Statuses {
			marks = append(marks, b.bind(string(status)))
		}
		b.add(fmt.Sprintf("status IN (%s)", strings.Join(marks, ", ")))
	}
	if q.HidesDeleted() {
		b.add("status <> " + b.bind(string(domain.StatusDeleted)))
	}
	if q.ExcludeStatus != "" {
		b.add("status <> " + b.bind(string(q.ExcludeStatus)))
	}
	if q.ModuleContains != "" {
		b.add(dialect.ContainsFold("module", b.bind(q.ModuleContains)))
	}
	if q.DueBefore != nil {
		b.add("due_date < " + b.bind(dialect.Time(*q.DueBefore)))
	}
	if q.Search != "" {
		b.add(dialect.Matches(b.bind(q.Search)))
	}

	clause := "TRUE"
	if len(b.conds) > 0 {
		clause = strings.Join(b.conds, " AND ")
	}
	return Where{Clause: clause, Args: b.args}
}

// OrderBy renders the ORDER BY expression of q. Relevance ordering binds the
// search text once more, so it takes the position of the next argument.
func OrderBy(q TaskQuery, dialect Dialect, next int) (string, []interface{}) {
	switch q.Sort {
	case SortRelevance:
		if q.Search != "" {
			return dialect.Rank(dialect.Placeholder(next)) + " DESC, due_date ASC", []interface{}{q.Search}
		}
		return "due_date ASC, id ASC", nil
	case SortCreatedDesc:
		return "created_at DESC, id ASC", nil
	case SortUpdatedDesc:
		return "updated_at DESC, id ASC", nil
	default:
		return "due_date ASC, id ASC", nil
	}
}

const (
	// DefaultLimit applies when a query leaves Limit unset.
	DefaultLimit = 100
	// MaxLimit caps every listing.
	MaxLimit = 1000
)

// ClampLimit bounds page sizes to (0, MaxLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
