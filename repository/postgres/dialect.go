package postgres

import (
	"fmt"
	"time"

	"github.com/sorayamlj/FocusTache/repository"
)

// searchWeights ranks D, C, B, A (description, tags, module, title) as 1, 3, 5, 10.
const searchWeights = `'{0.1, 0.3, 0.5, 1.0}'`

type dialect struct{}

// Dialect renders task queries for Postgres.
var Dialect repository.Dialect = dialect{}

func (dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (dialect) HasOwner(arg string) string { return arg + " = ANY(owners)" }

func (dialect) ContainsFold(column, arg string) string {
	return fmt.Sprintf("strpos(lower(%s), lower(%s)) > 0", column, arg)
}

func (dialect) Matches(arg string) string {
	return fmt.Sprintf("search @@ plainto_tsquery('simple', %s)", arg)
}

func (dialect) Rank(arg string) string {
	return fmt.Sprintf("ts_rank(%s, search, plainto_tsquery('simple', %s))", searchWeights, arg)
}

func (dialect) Time(t time.Time) interface{} { return t }
