package repositories

import (
	"context"
	"time"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceSnapshotRepository is the durable history of OHLC snapshots, one
// table per granularity.
type PriceSnapshotRepository interface {
	BulkUpsert(ctx context.Context, granularity models.Granularity, snapshots []models.PriceSnapshot) error
	QueryRange(ctx context.Context, granularity models.Granularity, code string, startDate, endDate time.Time) ([]models.PriceSnapshot, error)
	QueryRangeAll(ctx context.Context, granularity models.Granularity, startDate, endDate time.Time) ([]models.PriceSnapshot, error)
	QueryLatest(ctx context.Context, granularity models.Granularity, codes []string) (map[string]models.PriceSnapshot, error)
	GetByKeys(ctx context.Context, granularity models.Granularity, keys []models.SnapshotKey) (map[models.SnapshotKey]models.PriceSnapshot, error)
}

type priceSnapshotRepo struct {
	db *pgxpool.Pool
}

func NewPriceSnapshotRepository(db *pgxpool.Pool) PriceSnapshotRepository {
	return &priceSnapshotRepo{db: db}
}

const snapshotColumns = `id, code, date, opening_price, highest_price, lowest_price, close_price, adj_close_price, trade_volume`

func scanSnapshots(rows pgx.Rows) ([]models.PriceSnapshot, error) {
	defer rows.Close()

	snapshots := []models.PriceSnapshot{}
	for rows.Next() {
		var s models.PriceSnapshot
		if err := rows.Scan(&s.ID, &s.Code, &s.Date, &s.OpeningPrice, &s.HighestPrice, &s.LowestPrice,
			&s.ClosePrice, &s.AdjClosePrice, &s.TradeVolume); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// BulkUpsert is idempotent on (code, date): a repeated bucket overwrites
// the stored values. Duplicates inside one call collapse to the last one.
func (r *priceSnapshotRepo) BulkUpsert(ctx context.Context, granularity models.Granularity, snapshots []models.PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	index := make(map[models.SnapshotKey]int, len(snapshots))
	args := make([][]any, 0, len(snapshots))
	for _, s := range snapshots {
		key := models.NewSnapshotKey(s.Code, s.Date)
		row := []any{s.Code, key.Date, s.OpeningPrice, s.HighestPrice, s.LowestPrice, s.ClosePrice, s.AdjClosePrice, s.TradeVolume}
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
		`INSERT INTO `+granularity.Table()+` (code, date, opening_price, highest_price, lowest_price, close_price, adj_close_price, trade_volume)`,
		`ON CONFLICT (code, date) DO UPDATE SET
			opening_price = EXCLUDED.opening_price,
			highest_price = EXCLUDED.highest_price,
			lowest_price = EXCLUDED.lowest_price,
			close_price = EXCLUDED.close_price,
			adj_close_price = EXCLUDED.adj_close_price,
			trade_volume = EXCLUDED.trade_volume`,
		8, args)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// QueryRange returns code's snapshots between startDate and endDate
// inclusive, ordered by date ascending.
func (r *priceSnapshotRepo) QueryRange(ctx context.Context, granularity models.Granularity, code string, startDate, endDate time.Time) ([]models.PriceSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM `+granularity.Table()+`
		WHERE code = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC`, code, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

func (r *priceSnapshotRepo) QueryRangeAll(ctx context.Context, granularity models.Granularity, startDate, endDate time.Time) ([]models.PriceSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM `+granularity.Table()+`
		WHERE date BETWEEN $1 AND $2
		ORDER BY code, date ASC`, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

// QueryLatest returns the row with the greatest date for each code that
// has any row.
func (r *priceSnapshotRepo) QueryLatest(ctx context.Context, granularity models.Granularity, codes []string) (map[string]models.PriceSnapshot, error) {
	latest := make(map[string]models.PriceSnapshot, len(codes))
	if len(codes) == 0 {
		return latest, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (code) `+snapshotColumns+`
		FROM `+granularity.Table()+`
		WHERE code = ANY($1)
		ORDER BY code, date DESC`, codes)
	if err != nil {
		return nil, err
	}
	snapshots, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		latest[s.Code] = s
	}
	return latest, nil
}

// GetByKeys looks up the exact (code, date) snapshots; missing keys are
// absent from the result.
func (r *priceSnapshotRepo) GetByKeys(ctx context.Context, granularity models.Granularity, keys []models.SnapshotKey) (map[models.SnapshotKey]models.PriceSnapshot, error) {
	result := make(map[models.SnapshotKey]models.PriceSnapshot, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	codes := make([]string, len(keys))
	dates := make([]time.Time, len(keys))
	for i, k := range keys {
		codes[i] = k.Code
		dates[i] = k.Date
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM `+granularity.Table()+`
		WHERE (code, date) IN (SELECT * FROM unnest($1::text[], $2::date[]))`, codes, dates)
	if err != nil {
		return nil, err
	}
	snapshots, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		result[models.NewSnapshotKey(s.Code, s.Date)] = s
	}
	return result, nil
}
