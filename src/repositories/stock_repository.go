package repositories

import (
	"context"
	"errors"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StockRepository interface {
	GetAll(ctx context.Context) ([]models.Stock, error)
	GetByCode(ctx context.Context, code string) (*models.Stock, error)
	GetByCodes(ctx context.Context, codes []string) (map[string]models.Stock, error)
	Upsert(ctx context.Context, stocks []models.Stock) error
}

type stockRepo struct {
	db *pgxpool.Pool
}

func NewStockRepository(db *pgxpool.Pool) StockRepository {
	return &stockRepo{db: db}
}

const stockColumns = `id, code, name, market_index, country, created_at, updated_at`

func scanStock(row pgx.Row, s *models.Stock) error {
	return row.Scan(&s.ID, &s.Code, &s.Name, &s.MarketIndex, &s.Country, &s.CreatedAt, &s.UpdatedAt)
}

func (r *stockRepo) GetAll(ctx context.Context) ([]models.Stock, error) {
	rows, err := r.db.Query(ctx, `SELECT `+stockColumns+` FROM stock ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := []models.Stock{}
	for rows.Next() {
		var s models.Stock
		if err := scanStock(rows, &s); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

func (r *stockRepo) GetByCode(ctx context.Context, code string) (*models.Stock, error) {
	var s models.Stock
	err := scanStock(r.db.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock WHERE code = $1`, code), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByCodes returns the known stocks among codes keyed by code. Unknown
// codes are simply absent from the result.
func (r *stockRepo) GetByCodes(ctx context.Context, codes []string) (map[string]models.Stock, error) {
	stocks := make(map[string]models.Stock, len(codes))
	if len(codes) == 0 {
		return stocks, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+stockColumns+` FROM stock WHERE code = ANY($1)`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Stock
		if err := scanStock(rows, &s); err != nil {
			return nil, err
		}
		stocks[s.Code] = s
	}
	return stocks, rows.Err()
}

// Upsert inserts stocks or refreshes name, market index and country of
// existing codes.
func (r *stockRepo) Upsert(ctx context.Context, stocks []models.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	byCode := make(map[string]int, len(stocks))
	args := make([][]any, 0, len(stocks))
	for _, s := range stocks {
		row := []any{s.Code, s.Name, s.MarketIndex, s.Country}
		if i, ok := byCode[s.Code]; ok {
			args[i] = row
			continue
		}
		byCode[s.Code] = len(args)
		args = append(args, row)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = bulkUpsert(ctx, tx,
		`INSERT INTO stock (code, name, market_index, country)`,
		`ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			market_index = EXCLUDED.market_index,
			country = EXCLUDED.country,
			updated_at = NOW()`,
		4, args)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
