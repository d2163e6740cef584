package db

import (
	"fmt"
	"strings"
)

// UpdateBuilder assembles a parameterized UPDATE statement from an explicit
// set of column assignments. Values always travel as placeholders; column
// names must be compile-time literals in the calling repository, never
// request input.
type UpdateBuilder struct {
	table string
	sets  []string
	args  []interface{}
}

func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set adds a column assignment with a bound value.
func (b *UpdateBuilder) Set(column string, value interface{}) *UpdateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// SetRaw adds a column assignment to a SQL expression that takes no bound
// value, such as NOW() or a counter increment.
func (b *UpdateBuilder) SetRaw(column, expr string) *UpdateBuilder {
	b.sets = append(b.sets, fmt.Sprintf("%s = %s", column, expr))
	return b
}

// Empty reports whether no assignments have been added.
func (b *UpdateBuilder) Empty() bool {
	return len(b.sets) == 0
}

// Where finalizes the statement with an equality condition on column and
// returns the SQL text plus the full argument list.
func (b *UpdateBuilder) Where(column string, value interface{}) (string, []interface{}) {
	b.args = append(b.args, value)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		b.table, strings.Join(b.sets, ", "), column, len(b.args))
	return sql, b.args
}
