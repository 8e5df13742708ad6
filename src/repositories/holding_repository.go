package repositories

import (
	"context"
	"errors"

	"assetmanager/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldingRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]models.Holding, error)
	GetByIDs(ctx context.Context, userID int64, ids []int64) (map[int64]models.Holding, error)
	Create(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error
	Update(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error
	Delete(ctx context.Context, userID, id int64) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

const holdingSelect = `
	SELECT h.id, h.user_id, h.stock_id, h.investment_bank, h.account_type, h.purchase_date,
		h.purchase_price, h.purchase_currency, h.quantity, h.created_at, h.updated_at,
		s.id, s.code, s.name, s.market_index, s.country, s.created_at, s.updated_at
	FROM holding h
	JOIN stock s ON s.id = h.stock_id`

func scanHolding(row pgx.Row, h *models.Holding) error {
	return row.Scan(&h.ID, &h.UserID, &h.StockID, &h.InvestmentBank, &h.AccountType, &h.PurchaseDate,
		&h.PurchasePrice, &h.PurchaseCurrency, &h.Quantity, &h.CreatedAt, &h.UpdatedAt,
		&h.Stock.ID, &h.Stock.Code, &h.Stock.Name, &h.Stock.MarketIndex, &h.Stock.Country,
		&h.Stock.CreatedAt, &h.Stock.UpdatedAt)
}

func (r *holdingRepo) query(ctx context.Context, query string, args ...any) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := scanHolding(rows, &h); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetByUserID returns the user's holdings with their stock loaded, oldest
// purchase first.
func (r *holdingRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Holding, error) {
	return r.query(ctx, holdingSelect+`
		WHERE h.user_id = $1
		ORDER BY h.purchase_date, h.id`, userID)
}

// GetByIDs only returns holdings owned by userID.
func (r *holdingRepo) GetByIDs(ctx context.Context, userID int64, ids []int64) (map[int64]models.Holding, error) {
	result := make(map[int64]models.Holding, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	holdings, err := r.query(ctx, holdingSelect+`
		WHERE h.user_id = $1 AND h.id = ANY($2)`, userID, ids)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		result[h.ID] = h
	}
	return result, nil
}

// withTx runs fn in tx, or in a new transaction committed on success when tx is nil.
func (r *holdingRepo) withTx(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *holdingRepo) Create(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error {
	query := `
		INSERT INTO holding (user_id, stock_id, investment_bank, account_type, purchase_date,
			purchase_price, purchase_currency, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return r.withTx(ctx, tx, func(tx pgx.Tx) error {
		for _, h := range holdings {
			err := tx.QueryRow(ctx, query,
				h.UserID, h.StockID, h.InvestmentBank, h.AccountType, h.PurchaseDate,
				h.PurchasePrice, h.PurchaseCurrency, h.Quantity,
			).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Update rewrites every editable field. A holding that does not exist or
// belongs to another user fails the whole batch with ErrNotFound.
func (r *holdingRepo) Update(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error {
	query := `
		UPDATE holding SET
			stock_id = $3,
			investment_bank = $4,
			account_type = $5,
			purchase_date = $6,
			purchase_price = $7,
			purchase_currency = $8,
			quantity = $9,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	return r.withTx(ctx, tx, func(tx pgx.Tx) error {
		for _, h := range holdings {
			err := tx.QueryRow(ctx, query,
				h.ID, h.UserID, h.StockID, h.InvestmentBank, h.AccountType, h.PurchaseDate,
				h.PurchasePrice, h.PurchaseCurrency, h.Quantity,
			).Scan(&h.UpdatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *holdingRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM holding WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
