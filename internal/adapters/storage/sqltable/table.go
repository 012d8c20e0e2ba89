// Package sqltable implementa pets.Store sobre database/sql. El mismo código
// sirve a SQLite y Postgres; lo único que cambia es el Dialect.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"

	"pet-shelter/internal/domain/pets"
)

// Dialect describe las diferencias de SQL entre motores.
type Dialect struct {
	Name string
	// Rebind reescribe los placeholders "?" al formato del motor.
	Rebind func(query string) string
}

var (
	SQLite = Dialect{Name: "sqlite", Rebind: func(q string) string { return q }}

	Postgres = Dialect{Name: "postgres", Rebind: rebindDollar}
)

type Table struct {
	db      *sql.DB
	dialect Dialect
}

var _ pets.Store = (*Table)(nil)

func New(db *sql.DB, d Dialect) *Table {
	if d.Rebind == nil {
		d.Rebind = SQLite.Rebind
	}
	return &Table{db: db, dialect: d}
}

func (t *Table) Query(ctx context.Context, sel pets.Selection) (pets.Cursor, error) {
	cols := "*"
	if len(sel.Projection) > 0 {
		cols = strings.Join(sel.Projection, ", ")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(pets.TableName)
	writeWhere(&b, sel.Filter)
	if s := strings.TrimSpace(sel.SortOrder); s != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(s)
	}

	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(b.String()), sel.Args...)
	if err != nil {
		return pets.Cursor{}, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return pets.Cursor{}, err
	}

	out := pets.Cursor{Columns: names, Rows: make([]pets.Row, 0)}
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return pets.Cursor{}, err
		}

		row := make(pets.Row, len(names))
		for i, n := range names {
			// TEXT puede llegar como []byte según el driver
			if bs, ok := vals[i].([]byte); ok {
				row[n] = string(bs)
				continue
			}
			row[n] = vals[i]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}

func (t *Table) Insert(ctx context.Context, values pets.Values) (int64, error) {
	keys := sortedKeys(values)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pets.TableName)
	if len(keys) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		b.WriteString(" (")
		b.WriteString(strings.Join(keys, ", "))
		b.WriteString(") VALUES (")
		b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", "))
		b.WriteString(")")
	}
	b.WriteString(" RETURNING ")
	b.WriteString(pets.ColumnID)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, values[k])
	}

	var id int64
	if err := t.db.QueryRowContext(ctx, t.dialect.Rebind(b.String()), args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.New("insert returned no id")
		}
		return 0, err
	}
	return id, nil
}

func (t *Table) Update(ctx context.Context, values pets.Values, sel pets.Selection) (int64, error) {
	keys := sortedKeys(values)
	if len(keys) == 0 {
		return 0, nil
	}

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+len(sel.Args))
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, values[k])
	}
	args = append(args, sel.Args...)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(pets.TableName)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	writeWhere(&b, sel.Filter)

	return t.exec(ctx, b.String(), args)
}

func (t *Table) Delete(ctx context.Context, sel pets.Selection) (int64, error) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(pets.TableName)
	writeWhere(&b, sel.Filter)

	return t.exec(ctx, b.String(), sel.Args)
}

func (t *Table) exec(ctx context.Context, q string, args []any) (int64, error) {
	res, err := t.db.ExecContext(ctx, t.dialect.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func writeWhere(b *strings.Builder, filter string) {
	if f := strings.TrimSpace(filter); f != "" {
		b.WriteString(" WHERE ")
		b.WriteString(f)
	}
}

func sortedKeys(v pets.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rebindDollar cambia "?" por "$1", "$2", ... fuera de literales '...'.
func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
