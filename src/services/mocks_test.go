package services

import (
	"context"
	"time"

	"assetmanager/src/clients/oauth"
	"assetmanager/src/models"
	"assetmanager/src/repositories"
	"assetmanager/src/valuation"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockStockRepo struct{ mock.Mock }

func (m *mockStockRepo) GetAll(ctx context.Context) ([]models.Stock, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Stock), args.Error(1)
}

func (m *mockStockRepo) GetByCode(ctx context.Context, code string) (*models.Stock, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *mockStockRepo) GetByCodes(ctx context.Context, codes []string) (map[string]models.Stock, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(map[string]models.Stock), args.Error(1)
}

func (m *mockStockRepo) Upsert(ctx context.Context, stocks []models.Stock) error {
	return m.Called(ctx, stocks).Error(0)
}

type mockHoldingRepo struct{ mock.Mock }

func (m *mockHoldingRepo) GetByUserID(ctx context.Context, userID int64) ([]models.Holding, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Holding), args.Error(1)
}

func (m *mockHoldingRepo) GetByIDs(ctx context.Context, userID int64, ids []int64) (map[int64]models.Holding, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(map[int64]models.Holding), args.Error(1)
}

func (m *mockHoldingRepo) Create(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error {
	return m.Called(ctx, holdings, tx).Error(0)
}

func (m *mockHoldingRepo) Update(ctx context.Context, holdings []*models.Holding, tx pgx.Tx) error {
	return m.Called(ctx, holdings, tx).Error(0)
}

func (m *mockHoldingRepo) Delete(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

// fakeSnapshotRepo keeps snapshots in memory per granularity.
type fakeSnapshotRepo struct {
	rows map[models.Granularity]map[models.SnapshotKey]models.PriceSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{rows: map[models.Granularity]map[models.SnapshotKey]models.PriceSnapshot{}}
}

func (f *fakeSnapshotRepo) BulkUpsert(_ context.Context, g models.Granularity, snapshots []models.PriceSnapshot) error {
	if f.rows[g] == nil {
		f.rows[g] = map[models.SnapshotKey]models.PriceSnapshot{}
	}
	for _, s := range snapshots {
		f.rows[g][models.NewSnapshotKey(s.Code, s.Date)] = s
	}
	return nil
}

func (f *fakeSnapshotRepo) QueryRange(_ context.Context, g models.Granularity, code string, start, end time.Time) ([]models.PriceSnapshot, error) {
	var out []models.PriceSnapshot
	for _, s := range f.rows[g] {
		if s.Code == code && !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) QueryRangeAll(_ context.Context, g models.Granularity, start, end time.Time) ([]models.PriceSnapshot, error) {
	var out []models.PriceSnapshot
	for _, s := range f.rows[g] {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) QueryLatest(_ context.Context, g models.Granularity, codes []string) (map[string]models.PriceSnapshot, error) {
	out := map[string]models.PriceSnapshot{}
	for _, code := range codes {
		for _, s := range f.rows[g] {
			if s.Code != code {
				continue
			}
			if cur, ok := out[code]; !ok || s.Date.After(cur.Date) {
				out[code] = s
			}
		}
	}
	return out, nil
}

func (f *fakeSnapshotRepo) GetByKeys(_ context.Context, g models.Granularity, keys []models.SnapshotKey) (map[models.SnapshotKey]models.PriceSnapshot, error) {
	out := map[models.SnapshotKey]models.PriceSnapshot{}
	for _, k := range keys {
		if s, ok := f.rows[g][k]; ok {
			out[k] = s
		}
	}
	return out, nil
}

type fakeMinutelyRepo struct {
	quotes []models.MinutelyQuote
}

func (f *fakeMinutelyRepo) BulkUpsert(_ context.Context, quotes []models.MinutelyQuote) error {
	f.quotes = append(f.quotes, quotes...)
	return nil
}

func (f *fakeMinutelyRepo) QueryRange(_ context.Context, start, end time.Time) ([]models.MinutelyQuote, error) {
	var out []models.MinutelyQuote
	for _, q := range f.quotes {
		if !q.Datetime.Before(start) && q.Datetime.Before(end) {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeDividendRepo struct {
	dividends map[string]decimal.Decimal
}

func (f *fakeDividendRepo) GetByCodes(_ context.Context, codes []string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, code := range codes {
		if d, ok := f.dividends[code]; ok {
			out[code] = d
		}
	}
	return out, nil
}

func (f *fakeDividendRepo) Upsert(context.Context, []models.Dividend) error {
	return nil
}

type fakeExchangeRateRepo struct {
	rates []models.ExchangeRate
	calls int
}

func (f *fakeExchangeRateRepo) GetAll(context.Context) ([]models.ExchangeRate, error) {
	f.calls++
	return f.rates, nil
}

func (f *fakeExchangeRateRepo) Upsert(_ context.Context, rates []models.ExchangeRate) error {
	f.rates = rates
	return nil
}

type fixedPrices map[string]decimal.Decimal

func (p fixedPrices) GetCurrentPrices(_ context.Context, codes []string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, code := range codes {
		if price, ok := p[code]; ok {
			out[code] = price
		}
	}
	return out, nil
}

type fixedRates valuation.ExchangeRates

func (r fixedRates) GetRates(context.Context) (valuation.ExchangeRates, error) {
	return valuation.ExchangeRates(r), nil
}

func (r fixedRates) Refresh(context.Context) (int, error) {
	return 0, nil
}

type fakeOAuth struct {
	identities map[string]oauth.Identity
}

func (f *fakeOAuth) Verify(_ context.Context, provider models.ProviderType, token string) (*oauth.Identity, error) {
	identity, ok := f.identities[token]
	if !ok || identity.Provider != provider {
		return nil, oauth.ErrInvalidToken
	}
	return &identity, nil
}

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) GetBySocialID(_ context.Context, socialID string, provider models.ProviderType) (*models.User, error) {
	for _, u := range f.users {
		if u.SocialID == socialID && u.Provider == provider {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return nil
}

var errNotFound = repositories.ErrNotFound
