package repositories

import (
	"context"
	"time"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StockMinutelyTable       = "stock_minutely"
	MarketIndexMinutelyTable = "market_index_minutely"
)

// MinutelyRepository stores minute-bucketed quotes in one table.
type MinutelyRepository interface {
	BulkUpsert(ctx context.Context, quotes []models.MinutelyQuote) error
	QueryRange(ctx context.Context, start, end time.Time) ([]models.MinutelyQuote, error)
}

type minutelyRepo struct {
	db    *pgxpool.Pool
	table string
}

func NewMinutelyRepository(db *pgxpool.Pool, table string) MinutelyRepository {
	return &minutelyRepo{db: db, table: table}
}

type minuteKey struct {
	code     string
	datetime time.Time
}

// BulkUpsert truncates each datetime to the minute and overwrites existing
// (code, datetime) rows.
func (r *minutelyRepo) BulkUpsert(ctx context.Context, quotes []models.MinutelyQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	index := make(map[minuteKey]int, len(quotes))
	args := make([][]any, 0, len(quotes))
	for _, q := range quotes {
		key := minuteKey{code: q.Code, datetime: q.Datetime.UTC().Truncate(time.Minute)}
		row := []any{q.Code, key.datetime, q.CurrentPrice}
		if i, ok := index[key]; ok {
			args[i] = row
			continue
		}
		index[key] = len(args)
		args = append(args, row)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = bulkUpsert(ctx, tx,
		`INSERT INTO `+r.table+` (code, datetime, current_price)`,
		`ON CONFLICT (code, datetime) DO UPDATE SET current_price = EXCLUDED.current_price`,
		3, args)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// QueryRange returns quotes in [start, end) ordered by code then time.
func (r *minutelyRepo) QueryRange(ctx context.Context, start, end time.Time) ([]models.MinutelyQuote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, datetime, current_price
		FROM `+r.table+`
		WHERE datetime >= $1 AND datetime < $2
		ORDER BY code, datetime`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []models.MinutelyQuote{}
	for rows.Next() {
		var q models.MinutelyQuote
		if err := rows.Scan(&q.ID, &q.Code, &q.Datetime, &q.CurrentPrice); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
