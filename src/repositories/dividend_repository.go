package repositories

import (
	"context"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type DividendRepository interface {
	GetByCodes(ctx context.Context, codes []string) (map[string]decimal.Decimal, error)
	Upsert(ctx context.Context, dividends []models.Dividend) error
}

type dividendRepo struct {
	db *pgxpool.Pool
}

func NewDividendRepository(db *pgxpool.Pool) DividendRepository {
	return &dividendRepo{db: db}
}

// GetByCodes returns the per-share dividend of each code that has one.
func (r *dividendRepo) GetByCodes(ctx context.Context, codes []string) (map[string]decimal.Decimal, error) {
	dividends := make(map[string]decimal.Decimal, len(codes))
	if len(codes) == 0 {
		return dividends, nil
	}
	rows, err := r.db.Query(ctx, `SELECT stock_code, dividend FROM dividend WHERE stock_code = ANY($1)`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var amount decimal.Decimal
		if err := rows.Scan(&code, &amount); err != nil {
			return nil, err
		}
		dividends[code] = amount
	}
	return dividends, rows.Err()
}

func (r *dividendRepo) Upsert(ctx context.Context, dividends []models.Dividend) error {
	if len(dividends) == 0 {
		return nil
	}
	index := make(map[string]int, len(dividends))
	args := make([][]any, 0, len(dividends))
	for _, d := range dividends {
		row := []any{d.StockCode, d.Dividend}
		if i, ok := index[d.StockCode]; ok {
			args[i] = row
			continue
		}
		index[d.StockCode] = len(args)
		args = append(args, row)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = bulkUpsert(ctx, tx,
		`INSERT INTO dividend (stock_code, dividend)`,
		`ON CONFLICT (stock_code) DO UPDATE SET dividend = EXCLUDED.dividend, updated_at = NOW()`,
		2, args)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
