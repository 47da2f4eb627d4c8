package core

// WeatherInfo summarizes a destination forecast obtained from a weather tool.
type WeatherInfo struct {
	TemperatureC   *float64 `json:"temperature_c"`
	Conditions     string   `json:"conditions,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Recommendation is one suggested venue, stay or activity, typically sourced
// from a search tool result.
type Recommendation struct {
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet,omitempty"`
	URL        string  `json:"url,omitempty"`
	PriceRange string  `json:"price_range,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Category   string  `json:"category,omitempty"`
}

// CardRecommendation names the payment card best suited to the trip.
type CardRecommendation struct {
	Card    string `json:"card"`
	Benefit string `json:"benefit,omitempty"`
	FXFee   string `json:"fx_fee,omitempty"`
	Source  string `json:"source,omitempty"`
}

// CurrencyInfo captures a currency conversion relevant to the trip budget.
type CurrencyInfo struct {
	Base      string  `json:"base"`
	Target    string  `json:"target"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount,omitempty"`
	Converted float64 `json:"converted,omitempty"`
	Date      string  `json:"date,omitempty"`
}

// StructuredOutput is the schema-shaped result of one query-handling cycle.
// Every field except Destination and TravelDates is optional; a response
// assembled from partial data sets Incomplete and lists the reasons in
// Errors rather than failing the request.
type StructuredOutput struct {
	Destination        string              `json:"destination"`
	TravelDates        string              `json:"travel_dates"`
	Weather            *WeatherInfo        `json:"weather,omitempty"`
	Recommendations    []Recommendation    `json:"recommendations,omitempty"`
	CardRecommendation *CardRecommendation `json:"card_recommendation,omitempty"`
	CurrencyInfo       *CurrencyInfo       `json:"currency_info,omitempty"`
	Citations          []string            `json:"citations,omitempty"`
	NextSteps          []string            `json:"next_steps,omitempty"`
	Incomplete         bool                `json:"incomplete"`
	Errors             []string            `json:"errors,omitempty"`
}
