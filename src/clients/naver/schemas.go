package naver

// WorldStockResponse is the subset of the world stock "basic" endpoint in use.
type WorldStockResponse struct {
	StockName     string `json:"stockName"`
	ReutersCode   string `json:"reutersCode"`
	ClosePrice    string `json:"closePrice"`
	LocalTradedAt string `json:"localTradedAt"`
}

// DomesticStockResponse is returned by the domestic realtime polling
// endpoint for a comma separated list of codes.
type DomesticStockResponse struct {
	Datas []DomesticStockData `json:"datas"`
	Time  string              `json:"time"`
}

type DomesticStockData struct {
	ItemCode      string `json:"itemCode"`
	StockName     string `json:"stockName"`
	ClosePrice    string `json:"closePrice"`
	LocalTradedAt string `json:"localTradedAt"`
}
