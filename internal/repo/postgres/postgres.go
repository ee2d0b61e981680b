package postgres

import (
	"errors"
	"sort"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// observed is embedded by every repo so each query is timed under a logical
// op name.
type observed struct {
	prom *observability.Prom
}

func (o observed) observe(op string, fn func() error) error {
	return o.prom.ObserveDB(op, fn)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern that matches q literally anywhere
// in the column. Queries using it must declare ESCAPE '\'.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func categoriesToStrings(in []category.Category) []string {
	out := make([]string, 0, len(in))
	for _, c := range category.Dedupe(in) {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

func stringsToCategories(in []string) []category.Category {
	out := make([]category.Category, 0, len(in))
	for _, s := range in {
		out = append(out, category.Category(s))
	}
	return out
}
