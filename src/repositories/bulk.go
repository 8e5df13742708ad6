package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Postgres caps a statement at 65535 bind parameters.
const maxBindParams = 65535

// valuesClause renders "($1, $2), ($3, $4)" for rows*cols placeholders.
func valuesClause(rows, cols int) string {
	valueStrings := make([]string, 0, rows)
	placeholders := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
	}
	return strings.Join(valueStrings, ", ")
}

// bulkUpsert writes rows in as few statements as the bind parameter limit
// allows, inside a single transaction. head is the "INSERT INTO t (cols)"
// prefix and tail the "ON CONFLICT ..." suffix.
func bulkUpsert(ctx context.Context, tx pgx.Tx, head, tail string, cols int, args [][]any) error {
	perStatement := maxBindParams / cols
	for start := 0; start < len(args); start += perStatement {
		end := start + perStatement
		if end > len(args) {
			end = len(args)
		}
		batch := args[start:end]
		flat := make([]any, 0, len(batch)*cols)
		for _, row := range batch {
			flat = append(flat, row...)
		}
		query := head + " VALUES " + valuesClause(len(batch), cols) + " " + tail
		if _, err := tx.Exec(ctx, query, flat...); err != nil {
			return err
		}
	}
	return nil
}
