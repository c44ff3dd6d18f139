// Package store is the remote record store accessor. It exposes only
// filtered select, single-statement update, insert and delete per table;
// callers get no transaction surface, mirroring the store contract the rest
// of the system is written against. The delete-returning and server-side
// increment forms exist so single statements can stay atomic where it counts.
package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"adwheel/database"

	"github.com/jackc/pgx/v5"
)

// Filter selects rows by column comparison. A bare column name compares for
// equality; a column followed by an operator ("created_at <", "balance >=")
// uses that operator. A nil value turns equality into IS NULL.
type Filter map[string]any

// Add is a set-value that applies a server-side increment instead of an
// assignment, so concurrent writers cannot lose each other's additions.
type Add float64

// Client is the record store accessor shared by all repositories.
type Client struct {
	db *database.DB
}

// New creates a store client over the connection pool.
func New(db *database.DB) *Client {
	return &Client{db: db}
}

// Select returns all rows of table matching the filter. The caller owns the
// returned rows and must close them.
func (c *Client) Select(ctx context.Context, table string, cols []string, f Filter) (pgx.Rows, error) {
	args := make([]any, 0, len(f))
	query := "SELECT " + columnList(cols) + " FROM " + ident(table) + buildWhere(f, &args)
	return c.db.Query(ctx, query, args...)
}

// SelectOne returns a single row of table matching the filter. Row errors,
// including pgx.ErrNoRows, surface on Scan.
func (c *Client) SelectOne(ctx context.Context, table string, cols []string, f Filter) pgx.Row {
	args := make([]any, 0, len(f))
	query := "SELECT " + columnList(cols) + " FROM " + ident(table) + buildWhere(f, &args)
	return c.db.QueryRow(ctx, query, args...)
}

// Update applies the set values to every row matching the filter and returns
// the number of rows touched.
func (c *Client) Update(ctx context.Context, table string, set map[string]any, f Filter) (int64, error) {
	var args []any
	assign := buildSet(set, &args)
	query := "UPDATE " + ident(table) + " SET " + assign + buildWhere(f, &args)

	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: update %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Insert adds one row to table.
func (c *Client) Insert(ctx context.Context, table string, vals map[string]any) error {
	cols := sortedKeys(vals)
	args := make([]any, 0, len(cols))
	holders := make([]string, 0, len(cols))
	for _, col := range cols {
		args = append(args, vals[col])
		holders = append(holders, fmt.Sprintf("$%d", len(args)))
	}
	query := "INSERT INTO " + ident(table) + " (" + columnList(cols) + ") VALUES (" + strings.Join(holders, ", ") + ")"

	if _, err := c.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store: insert %s: %w", table, err)
	}
	return nil
}

// Delete removes every row matching the filter and returns the number of
// rows removed.
func (c *Client) Delete(ctx context.Context, table string, f Filter) (int64, error) {
	args := make([]any, 0, len(f))
	query := "DELETE FROM " + ident(table) + buildWhere(f, &args)

	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: delete %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteReturning removes the matching row and returns its former columns in
// one statement, so lookup and removal cannot interleave with another caller.
func (c *Client) DeleteReturning(ctx context.Context, table string, f Filter, cols []string) pgx.Row {
	args := make([]any, 0, len(f))
	query := "DELETE FROM " + ident(table) + buildWhere(f, &args) + " RETURNING " + columnList(cols)
	return c.db.QueryRow(ctx, query, args...)
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var allowedOps = map[string]bool{
	"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
}

// ident guards table/column names. They are compile-time constants in the
// repositories, so a bad one is a programmer error.
func ident(name string) string {
	if !identRe.MatchString(name) {
		panic(fmt.Sprintf("store: invalid identifier %q", name))
	}
	return name
}

func columnList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ident(c)
	}
	return strings.Join(out, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildWhere(f Filter, args *[]any) string {
	if len(f) == 0 {
		return ""
	}

	conds := make([]string, 0, len(f))
	for _, key := range sortedKeys(f) {
		col, op, hasOp := strings.Cut(key, " ")
		col = ident(col)
		if !hasOp {
			op = "="
		} else if !allowedOps[op] {
			panic(fmt.Sprintf("store: invalid operator %q", op))
		}

		val := f[key]
		if val == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		*args = append(*args, val)
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, op, len(*args)))
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func buildSet(set map[string]any, args *[]any) string {
	assigns := make([]string, 0, len(set))
	for _, col := range sortedKeys(set) {
		name := ident(col)
		switch v := set[col].(type) {
		case Add:
			*args = append(*args, float64(v))
			assigns = append(assigns, fmt.Sprintf("%s = %s + $%d", name, name, len(*args)))
		default:
			*args = append(*args, v)
			assigns = append(assigns, fmt.Sprintf("%s = $%d", name, len(*args)))
		}
	}
	return strings.Join(assigns, ", ")
}
