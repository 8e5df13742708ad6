package naver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetmanager/src/config"
	"assetmanager/src/models"
	"assetmanager/src/utils/requests"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"
)

const userAgent = "Mozilla/5.0 (compatible; assetmanager/1.0)"

type NaverServiceClientI interface {
	GetWorldIndices(ctx context.Context) ([]models.MarketIndex, error)
	GetWorldStock(ctx context.Context, code string) (models.Observation, error)
	GetDomesticStocks(ctx context.Context, codes []string) ([]models.Observation, error)
	GetExchangeRates(ctx context.Context) ([]models.ExchangeRate, error)
}

type NaverServiceClient struct {
	API          *requests.ExternalAPIService
	Config       config.NaverConfig
	Translations Translations
}

func NewClient(cfg *config.Config) (*NaverServiceClient, error) {
	naverCfg := cfg.ExternalClients.Naver
	translations, err := LoadTranslations(naverCfg.TranslationsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load naver translations: %w", err)
	}
	api := requests.NewExternalAPIService(naverCfg.Timeout, naverCfg.RequestsPerSecond).
		WithHeader("User-Agent", userAgent)
	return &NaverServiceClient{
		API:          api,
		Config:       naverCfg,
		Translations: translations,
	}, nil
}

// parseNumber reads a formatted figure such as "1,234.56", "+0.45%" or "-12".
func parseNumber(text string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", "%", "", "+", "", " ", "").Replace(strings.TrimSpace(text))
	return decimal.NewFromString(cleaned)
}

func parseTradedAt(value string, fallback time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

func (c *NaverServiceClient) getDocument(ctx context.Context, endpoint string) (*goquery.Document, error) {
	resp, err := c.API.Get(ctx, endpoint, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The market pages are served as EUC-KR.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(body)
}

// GetWorldIndices scrapes the Americas index table. Rows that are short,
// unparsable or from an untranslated country are skipped; untranslated
// index names are kept as they are.
func (c *NaverServiceClient) GetWorldIndices(ctx context.Context) ([]models.MarketIndex, error) {
	doc, err := c.getDocument(ctx, c.Config.WorldIndexURL)
	if err != nil {
		return nil, err
	}
	return ParseWorldIndices(doc, c.Translations), nil
}

func ParseWorldIndices(doc *goquery.Document, t Translations) []models.MarketIndex {
	indices := []models.MarketIndex{}
	doc.Find("#americaIndex thead tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			if class, _ := td.Attr("class"); strings.Contains(class, "graph") {
				return
			}
			if span := td.Find("span").First(); span.Length() > 0 {
				cells = append(cells, strings.TrimSpace(span.Text()))
				return
			}
			if a := td.Find("a").First(); a.Length() > 0 {
				cells = append(cells, strings.TrimSpace(a.Text()))
				return
			}
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		if len(cells) < 6 {
			return
		}

		country, ok := t.Countries[cells[0]]
		if !ok {
			return
		}
		name, ok := t.Indices[cells[1]]
		if !ok {
			name = cells[1]
		}
		current, err := parseNumber(cells[2])
		if err != nil {
			return
		}
		change, err := parseNumber(cells[3])
		if err != nil {
			return
		}
		percent, err := parseNumber(cells[4])
		if err != nil {
			return
		}
		indices = append(indices, models.MarketIndex{
			Country:       country,
			IndexName:     name,
			CurrentValue:  current,
			ChangeValue:   change,
			ChangePercent: percent,
			UpdateTime:    cells[5],
		})
	})
	return indices
}

// GetWorldStock fetches the latest price of one world stock by its
// exchange qualified code, e.g. "AAPL.O".
func (c *NaverServiceClient) GetWorldStock(ctx context.Context, code string) (models.Observation, error) {
	var resp WorldStockResponse
	if err := c.API.GetJSON(ctx, fmt.Sprintf(c.Config.WorldStockURL, code), "", nil, &resp); err != nil {
		return models.Observation{}, err
	}
	price, err := parseNumber(resp.ClosePrice)
	if err != nil {
		return models.Observation{}, fmt.Errorf("invalid close price %q for %s: %w", resp.ClosePrice, code, err)
	}
	return models.Observation{
		Symbol:    code,
		Value:     price,
		Timestamp: parseTradedAt(resp.LocalTradedAt, time.Now()),
	}, nil
}

// GetDomesticStocks polls several domestic codes in one request. Codes
// absent from the response, or with an unparsable price, are left out.
func (c *NaverServiceClient) GetDomesticStocks(ctx context.Context, codes []string) ([]models.Observation, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var resp DomesticStockResponse
	endpoint := fmt.Sprintf(c.Config.DomesticStockURL, strings.Join(codes, ","))
	if err := c.API.GetJSON(ctx, endpoint, "", nil, &resp); err != nil {
		return nil, err
	}
	now := time.Now()
	observations := make([]models.Observation, 0, len(resp.Datas))
	for _, data := range resp.Datas {
		price, err := parseNumber(data.ClosePrice)
		if err != nil {
			continue
		}
		observations = append(observations, models.Observation{
			Symbol:    data.ItemCode,
			Value:     price,
			Timestamp: parseTradedAt(data.LocalTradedAt, now),
		})
	}
	return observations, nil
}

// GetExchangeRates scrapes the KRW quotes of the market index page.
func (c *NaverServiceClient) GetExchangeRates(ctx context.Context) ([]models.ExchangeRate, error) {
	doc, err := c.getDocument(ctx, c.Config.ExchangeRateURL)
	if err != nil {
		return nil, err
	}
	rates := ParseExchangeRates(doc)
	if len(rates) == 0 {
		return nil, fmt.Errorf("no exchange rates found at %s", c.Config.ExchangeRateURL)
	}
	return rates, nil
}

// ParseExchangeRates reads entries such as "미국 USD" / "1,385.50". Quotes
// per 100 units, like "일본 JPY(100엔)", are scaled to one unit.
func ParseExchangeRates(doc *goquery.Document) []models.ExchangeRate {
	rates := []models.ExchangeRate{}
	now := time.Now()
	doc.Find("#exchangeList li").Each(func(_ int, li *goquery.Selection) {
		label := strings.TrimSpace(li.Find("h3").Text())
		currency := ""
		for _, field := range strings.FieldsFunc(label, func(r rune) bool { return r == ' ' || r == '(' }) {
			if isCurrencyCode(field) {
				currency = field
				break
			}
		}
		if currency == "" {
			return
		}
		rate, err := parseNumber(li.Find("span.value").First().Text())
		if err != nil || !rate.IsPositive() {
			return
		}
		if strings.Contains(label, "100") {
			rate = rate.Div(decimal.NewFromInt(100))
		}
		rates = append(rates, models.ExchangeRate{
			SourceCurrency: currency,
			TargetCurrency: "KRW",
			Rate:           rate,
			UpdatedAt:      now,
		})
	})
	return rates
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
