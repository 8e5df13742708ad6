package schemas

import (
	"assetmanager/src/models"

	"github.com/shopspring/decimal"
)

type BankAccountResponse struct {
	InvestmentBankList []models.InvestmentBankType `json:"investment_bank_list"`
	AccountList        []models.AccountType        `json:"account_list"`
}

type StockListValue struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type StockListResponse struct {
	StockList []StockListValue `json:"stock_list"`
}

// StockAssetRequest is one holding in a POST or PUT /assetstock body. ID
// must be absent on create and present on update.
type StockAssetRequest struct {
	ID                   *int64                    `json:"id,omitempty"`
	StockCode            string                    `json:"stock_code"`
	BuyDate              Date                      `json:"buy_date"`
	Quantity             decimal.Decimal           `json:"quantity"`
	PurchasePrice        decimal.NullDecimal       `json:"purchase_price"`
	PurchaseCurrencyType string                    `json:"purchase_currency_type"`
	InvestmentBank       models.InvestmentBankType `json:"investment_bank"`
	AccountType          models.AccountType        `json:"account_type"`
}

// StockAsset is one valued holding.
type StockAsset struct {
	ID                   int64                     `json:"id"`
	StockCode            string                    `json:"stock_code"`
	StockName            string                    `json:"stock_name"`
	Quantity             decimal.Decimal           `json:"quantity"`
	BuyDate              Date                      `json:"buy_date"`
	InvestmentBank       models.InvestmentBankType `json:"investment_bank"`
	AccountType          models.AccountType        `json:"account_type"`
	PurchaseCurrencyType string                    `json:"purchase_currency_type"`
	Currency             string                    `json:"currency"`
	PurchasePrice        decimal.Decimal           `json:"purchase_price"`
	CurrentPrice         decimal.Decimal           `json:"current_price"`
	PurchaseAmount       decimal.Decimal           `json:"purchase_amount"`
	CurrentAmount        decimal.Decimal           `json:"current_amount"`
	ProfitAmount         decimal.Decimal           `json:"profit_amount"`
	ProfitRate           decimal.Decimal           `json:"profit_rate"`
	Dividend             decimal.Decimal           `json:"dividend"`
}

type StockAssetResponse struct {
	StockAssets         []StockAsset    `json:"stock_assets"`
	Currency            string          `json:"currency"`
	TotalAssetAmount    decimal.Decimal `json:"total_asset_amount"`
	TotalInvestAmount   decimal.Decimal `json:"total_invest_amount"`
	TotalProfitAmount   decimal.Decimal `json:"total_profit_amount"`
	TotalProfitRate     decimal.Decimal `json:"total_profit_rate"`
	TotalDividendAmount decimal.Decimal `json:"total_dividend_amount"`
}

type NotFoundStockResponse struct {
	NotFoundStockCodes    []string `json:"not_found_stock_codes"`
	NotFoundExchangeRates []string `json:"not_found_exchange_rates,omitempty"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
