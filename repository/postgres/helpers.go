package postgres

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// likePattern escapes LIKE metacharacters so search is a plain substring match.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

// setClause accumulates "column = $n" assignments with their arguments.
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, column+" = $"+strconv.Itoa(len(s.args)))
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}

// placeholder appends value and returns its positional reference.
func (s *setClause) placeholder(value any) string {
	s.args = append(s.args, value)
	return "$" + strconv.Itoa(len(s.args))
}
