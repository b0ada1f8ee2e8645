package registry

import "MacroPull/internal/domain/models"

var categoryOrder = []models.Category{
	models.CategoryEquities,
	models.CategoryFixedIncome,
	models.CategoryCurrencies,
	models.CategoryCommodities,
	models.CategoryVolatility,
}

var assets = []models.Asset{
	{Ticker: "SPY", Name: "S&P 500 ETF", Category: models.CategoryEquities},
	{Ticker: "QQQ", Name: "Nasdaq 100 ETF", Category: models.CategoryEquities},
	{Ticker: "IWM", Name: "Russell 2000 ETF", Category: models.CategoryEquities},
	{Ticker: "DIA", Name: "Dow Jones ETF", Category: models.CategoryEquities},
	{Ticker: "^TNX", Name: "10-Year Treasury Yield", Category: models.CategoryFixedIncome},
	{Ticker: "^TYX", Name: "30-Year Treasury Yield", Category: models.CategoryFixedIncome},
	{Ticker: "TLT", Name: "20+ Year Treasury ETF", Category: models.CategoryFixedIncome},
	{Ticker: "IEF", Name: "7-10 Year Treasury ETF", Category: models.CategoryFixedIncome},
	{Ticker: "DX-Y.NYB", Name: "US Dollar Index", Category: models.CategoryCurrencies},
	{Ticker: "EURUSD=X", Name: "EUR/USD", Category: models.CategoryCurrencies},
	{Ticker: "USDJPY=X", Name: "USD/JPY", Category: models.CategoryCurrencies},
	{Ticker: "GBPUSD=X", Name: "GBP/USD", Category: models.CategoryCurrencies},
	{Ticker: "GC=F", Name: "Gold Futures", Category: models.CategoryCommodities},
	{Ticker: "CL=F", Name: "Crude Oil Futures", Category: models.CategoryCommodities},
	{Ticker: "SI=F", Name: "Silver Futures", Category: models.CategoryCommodities},
	{Ticker: "^VIX", Name: "VIX Index", Category: models.CategoryVolatility},
}

// Categories returns category names in registry order.
func Categories() []models.Category {
	return append([]models.Category(nil), categoryOrder...)
}

// Assets returns the full universe in registry order.
func Assets() []models.Asset {
	return append([]models.Asset(nil), assets...)
}

// AssetsByCategory returns the assets of one category; unknown categories
// yield an empty slice.
func AssetsByCategory(c models.Category) []models.Asset {
	out := []models.Asset{}
	for _, a := range assets {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}

// Asset looks up a ticker in the universe.
func Asset(ticker string) (models.Asset, bool) {
	for _, a := range assets {
		if a.Ticker == ticker {
			return a, true
		}
	}
	return models.Asset{}, false
}

// QuickMetric pairs a headline ticker with its display label.
type QuickMetric struct {
	Ticker string
	Label  string
}

var quickMetrics = []QuickMetric{
	{Ticker: "SPY", Label: "SPY"},
	{Ticker: "DX-Y.NYB", Label: "Dollar"},
	{Ticker: "^TNX", Label: "10Y"},
	{Ticker: "^VIX", Label: "VIX"},
}

// QuickMetrics returns the headline tickers in display order.
func QuickMetrics() []QuickMetric {
	return append([]QuickMetric(nil), quickMetrics...)
}
