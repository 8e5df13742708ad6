package repositories

import (
	"context"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ExchangeRateRepository interface {
	GetAll(ctx context.Context) ([]models.ExchangeRate, error)
	Upsert(ctx context.Context, rates []models.ExchangeRate) error
}

type exchangeRateRepo struct {
	db *pgxpool.Pool
}

func NewExchangeRateRepository(db *pgxpool.Pool) ExchangeRateRepository {
	return &exchangeRateRepo{db: db}
}

func (r *exchangeRateRepo) GetAll(ctx context.Context) ([]models.ExchangeRate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, source_currency, target_currency, rate, updated_at
		FROM exchange_rate
		ORDER BY source_currency, target_currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := []models.ExchangeRate{}
	for rows.Next() {
		var rate models.ExchangeRate
		if err := rows.Scan(&rate.ID, &rate.SourceCurrency, &rate.TargetCurrency, &rate.Rate, &rate.UpdatedAt); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func (r *exchangeRateRepo) Upsert(ctx context.Context, rates []models.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	index := make(map[string]int, len(rates))
	args := make([][]any, 0, len(rates))
	for _, rate := range rates {
		key := rate.SourceCurrency + "_" + rate.TargetCurrency
		row := []any{rate.SourceCurrency, rate.TargetCurrency, rate.Rate}
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
		`INSERT INTO exchange_rate (source_currency, target_currency, rate)`,
		`ON CONFLICT (source_currency, target_currency) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()`,
		3, args)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
