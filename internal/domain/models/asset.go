package models

// Category groups assets on the dashboard.
type Category string

const (
	CategoryEquities    Category = "Equities"
	CategoryFixedIncome Category = "Fixed Income"
	CategoryCurrencies  Category = "Currencies"
	CategoryCommodities Category = "Commodities"
	CategoryVolatility  Category = "Volatility"
)

// Asset is one ticker in the reaction universe.
type Asset struct {
	Ticker   string   `json:"ticker"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}
