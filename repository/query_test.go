package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
	"github.com/sorayamlj/FocusTache/repository/postgres"
)

func TestBuildTaskWhere_HidesDeletedByDefault(t *testing.T) {
	where := repository.BuildTaskWhere(repository.TaskQuery{Owner: "ana@gmail.com"}, postgres.Dialect)

	assert.Equal(t, "$1 = ANY(owners) AND status <> $2", where.Clause)
	assert.Equal(t, []interface{}{"ana@gmail.com", "deleted"}, where.Args)
}

func TestBuildTaskWhere_ExplicitStatusesDisableDefault(t *testing.T) {
	q := repository.TaskQuery{
		Owner:    "ana@gmail.com",
		Statuses: []domain.Status{domain.StatusDeleted, domain.StatusDone},
	}
	where := repository.BuildTaskWhere(q, postgres.Dialect)

	assert.Equal(t, "$1 = ANY(owners) AND status IN ($2, $3)", where.Clause)
	assert.Equal(t, []interface{}{"ana@gmail.com", "deleted", "done"}, where.Args)
}

func TestBuildTaskWhere_IncludeDeleted(t *testing.T) {
	where := repository.BuildTaskWhere(repository.TaskQuery{IncludeDeleted: true}, postgres.Dialect)

	assert.Equal(t, "TRUE", where.Clause)
	assert.Empty(t, where.Args)
}

func TestBuildTaskWhere_ComposesFilters(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	q := repository.TaskQuery{
		Owner:          "ana@gmail.com",
		ExcludeStatus:  domain.StatusDone,
		ModuleContains: "math",
		DueBefore:      &due,
		Search:         "integrals",
	}
	where := repository.BuildTaskWhere(q, postgres.Dialect)

	assert.Equal(t, "$1 = ANY(owners) AND status <> $2 AND status <> $3 AND "+
		"strpos(lower(module), lower($4)) > 0 AND due_date < $5 AND "+
		"search @@ plainto_tsquery('simple', $6)", where.Clause)
	assert.Equal(t, []interface{}{"ana@gmail.com", "deleted", "done", "math", due, "integrals"}, where.Args)
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name  string
		query repository.TaskQuery
		want  string
		args  int
	}{
		{"default", repository.TaskQuery{}, "due_date ASC, id ASC", 0},
		{"created", repository.TaskQuery{Sort: repository.SortCreatedDesc}, "created_at DESC, id ASC", 0},
		{"updated", repository.TaskQuery{Sort: repository.SortUpdatedDesc}, "updated_at DESC, id ASC", 0},
		{"relevance without text", repository.TaskQuery{Sort: repository.SortRelevance}, "due_date ASC, id ASC", 0},
		{
			"relevance",
			repository.TaskQuery{Sort: repository.SortRelevance, Search: "exam"},
			"ts_rank('{0.1, 0.3, 0.5, 1.0}', search, plainto_tsquery('simple', $3)) DESC, due_date ASC",
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, args := repository.OrderBy(tt.query, postgres.Dialect, 3)
			assert.Equal(t, tt.want, order)
			assert.Len(t, args, tt.args)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, repository.DefaultLimit, repository.ClampLimit(0))
	assert.Equal(t, repository.DefaultLimit, repository.ClampLimit(-3))
	assert.Equal(t, 25, repository.ClampLimit(25))
	assert.Equal(t, repository.MaxLimit, repository.ClampLimit(repository.MaxLimit+1))
}
