package db

import (
	"fmt"
	"strings"
)

// Select builds a parameterised SELECT over a single table. It backs every
// list screen: column projection, equality and free-form filters, ordering
// and a limit/offset page.
type Select struct {
	table   string
	cols    string
	where   []string
	args    []interface{}
	orderBy string
}

// From starts a query over table returning cols.
func From(table, cols string) *Select {
	return &Select{table: table, cols: cols}
}

// next returns the placeholder index for the next bound argument.
func (s *Select) next() int { return len(s.args) + 1 }

// Where adds a clause. Each "?" in clause is replaced with the next
// positional placeholder and consumes one argument. Write "??" for a
// literal "?", such as the jsonb key-exists operator.
func (s *Select) Where(clause string, args ...interface{}) *Select {
	var b strings.Builder
	n := 0
	for i := 0; i < len(clause); i++ {
		ch := clause[i]
		switch {
		case ch == '?' && i+1 < len(clause) && clause[i+1] == '?':
			b.WriteByte('?')
			i++
		case ch == '?' && n < len(args):
			fmt.Fprintf(&b, "$%d", s.next()+n)
			n++
		default:
			b.WriteByte(ch)
		}
	}
	s.where = append(s.where, b.String())
	s.args = append(s.args, args...)
	return s
}

// Eq adds "column = value".
func (s *Select) Eq(column string, value interface{}) *Select {
	return s.Where(column+" = ?", value)
}

// EqIf adds "column = value" only when value is non-empty.
func (s *Select) EqIf(column, value string) *Select {
	if value == "" {
		return s
	}
	return s.Eq(column, value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search adds a case-insensitive substring match over one or more columns.
// "%" and "_" in term match literally.
func (s *Select) Search(term string, columns ...string) *Select {
	if term == "" || len(columns) == 0 {
		return s
	}
	idx := s.next()
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", c, idx)
	}
	s.where = append(s.where, "("+strings.Join(parts, " OR ")+")")
	s.args = append(s.args, "%"+likeEscaper.Replace(term)+"%")
	return s
}

// OrderBy sets the ORDER BY clause (without the keyword).
func (s *Select) OrderBy(orderBy string) *Select {
	s.orderBy = orderBy
	return s
}

func (s *Select) whereSQL() string {
	if len(s.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(s.where, " AND ")
}

// CountSQL returns the COUNT(*) query and its arguments.
func (s *Select) CountSQL() (string, []interface{}) {
	return "SELECT COUNT(*) FROM " + s.table + s.whereSQL(), s.args
}

// SQL returns the unpaged data query and its arguments.
func (s *Select) SQL() (string, []interface{}) {
	q := "SELECT " + s.cols + " FROM " + s.table + s.whereSQL()
	if s.orderBy != "" {
		q += " ORDER BY " + s.orderBy
	}
	return q, s.args
}

// PageSQL returns the data query with LIMIT/OFFSET appended as bound parameters.
func (s *Select) PageSQL(limit, offset int) (string, []interface{}) {
	q, args := s.SQL()
	idx := len(args) + 1
	q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
	out := make([]interface{}, 0, len(args)+2)
	out = append(out, args...)
	return q, append(out, limit, offset)
}
