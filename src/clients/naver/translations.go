package naver

import "assetmanager/src/utils"

// Translations maps the Korean labels of the world index page to the
// names stored and cached.
type Translations struct {
	Countries map[string]string
	Indices   map[string]string
}

func DefaultTranslations() Translations {
	return Translations{
		Countries: map[string]string{
			"미국":    "USA",
			"브라질":   "BRAZIL",
			"멕시코":   "MEXICO",
			"캐나다":   "CANADA",
			"아르헨티나": "ARGENTINA",
			"칠레":    "CHILE",
			"페루":    "PERU",
			"콜롬비아":  "COLOMBIA",
		},
		Indices: map[string]string{
			"다우산업":      "Dow Jones",
			"나스닥종합":     "NASDAQ",
			"S&P 500":   "S&P 500",
			"필라델피아 반도체": "PHLX Semiconductor",
			"보베스파":      "IBOVESPA",
			"IPC":       "IPC",
			"S&P/TSX":   "S&P/TSX",
			"MERVAL":    "MERVAL",
		},
	}
}

// LoadTranslations overlays the defaults with a group,korean,english CSV
// whose groups are "country" and "index". An empty path keeps the defaults.
func LoadTranslations(path string) (Translations, error) {
	t := DefaultTranslations()
	if path == "" {
		return t, nil
	}
	groups, err := utils.CSVToGroupedMap(path)
	if err != nil {
		return t, err
	}
	for k, v := range groups["country"] {
		t.Countries[k] = v
	}
	for k, v := range groups["index"] {
		t.Indices[k] = v
	}
	return t, nil
}
