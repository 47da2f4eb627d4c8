package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/voyagent/voyagent/tool"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherOptions configures the get_weather tool.
type WeatherOptions struct {
	// HTTPClient issues the geocoding and forecast requests.
	HTTPClient *http.Client

	// GeocodeURL and ForecastURL override the Open-Meteo endpoints.
	GeocodeURL  string
	ForecastURL string

	// ForecastDays is the forecast horizon in days.
	ForecastDays int
}

type weatherArgs struct {
	City string `json:"city" description:"Name of the city to get weather for"`
}

type weatherTool struct {
	client       *http.Client
	geocodeURL   string
	forecastURL  string
	forecastDays int
}

// NewWeather returns the get_weather tool. It geocodes the city and
// summarizes the Open-Meteo daily forecast into an average temperature, a
// dominant condition, and a packing recommendation.
func NewWeather(optFns ...func(o *WeatherOptions)) tool.Tool {
	opts := WeatherOptions{
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
		GeocodeURL:   defaultGeocodeURL,
		ForecastURL:  defaultForecastURL,
		ForecastDays: 7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	w := &weatherTool{
		client:       opts.HTTPClient,
		geocodeURL:   opts.GeocodeURL,
		forecastURL:  opts.ForecastURL,
		forecastDays: opts.ForecastDays,
	}

	return tool.NewFunctionTool(
		"get_weather",
		fmt.Sprintf("Get a %d-day weather forecast summary for a given city", opts.ForecastDays),
		tool.SchemaFromStruct(weatherArgs{}),
		w.call,
	)
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Daily struct {
		WeatherCode    []int     `json:"weathercode"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (w *weatherTool) call(ctx context.Context, args map[string]any) (any, error) {
	city, _ := args["city"].(string)

	var geo geocodeResponse
	geoURL := fmt.Sprintf("%s?name=%s&count=1", w.geocodeURL, url.QueryEscape(city))
	if err := w.getJSON(ctx, geoURL, &geo); err != nil {
		return nil, tool.NewToolError("get_weather", fmt.Sprintf("geocoding failed: %v", err), tool.CodeExecution)
	}
	if len(geo.Results) == 0 {
		return nil, tool.NewToolError("get_weather", fmt.Sprintf("city %q not found", city), tool.CodeExecution)
	}
	loc := geo.Results[0]

	var forecast forecastResponse
	fcURL := fmt.Sprintf(
		"%s?latitude=%g&longitude=%g&daily=weathercode,temperature_2m_max,temperature_2m_min&forecast_days=%d&timezone=UTC",
		w.forecastURL, loc.Latitude, loc.Longitude, w.forecastDays,
	)
	if err := w.getJSON(ctx, fcURL, &forecast); err != nil {
		return nil, tool.NewToolError("get_weather", fmt.Sprintf("forecast request failed: %v", err), tool.CodeExecution)
	}

	maxs := forecast.Daily.TemperatureMax
	mins := forecast.Daily.TemperatureMin
	if len(maxs) == 0 || len(mins) == 0 {
		return nil, tool.NewToolError("get_weather", fmt.Sprintf("no temperature data for %q", city), tool.CodeExecution)
	}

	avgMax := mean(maxs)
	avgMin := mean(mins)
	avgTemp := (avgMax + avgMin) / 2
	conditions := dominantCondition(forecast.Daily.WeatherCode)

	return map[string]any{
		"city":              loc.Name,
		"country":           loc.Country,
		"temperature_c":     round1(avgTemp),
		"temperature_max_c": round1(avgMax),
		"temperature_min_c": round1(avgMin),
		"conditions":        conditions,
		"recommendation":    packingAdvice(conditions, avgTemp),
		"forecast_days":     len(maxs),
	}, nil
}

func (w *weatherTool) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// dominantCondition maps WMO weather codes to a coarse condition and returns
// the most frequent one. Codes <=1 are sunny, <=3 cloudy, >50 rainy.
func dominantCondition(codes []int) string {
	if len(codes) == 0 {
		return "unknown"
	}
	counts := map[string]int{}
	for _, code := range codes {
		switch {
		case code <= 1:
			counts["sunny"]++
		case code <= 3:
			counts["cloudy"]++
		case code > 50:
			counts["rainy"]++
		default:
			counts["mixed"]++
		}
	}
	best, bestCount := "mixed", 0
	for condition, count := range counts {
		if count > bestCount {
			best, bestCount = condition, count
		}
	}
	return best
}

func packingAdvice(conditions string, avgTemp float64) string {
	var advice string
	switch conditions {
	case "sunny":
		advice = "Great weather! Pack sunscreen and light clothing."
	case "cloudy":
		advice = "Expect overcast skies. Bring layers for varying temperatures."
	case "rainy":
		advice = "Rain expected. Pack an umbrella and waterproof jacket."
	default:
		advice = "Mixed conditions expected. Pack for various weather types."
	}
	if avgTemp < 10 {
		advice += " Cold temperatures - bring warm clothing."
	} else if avgTemp > 30 {
		advice += " Hot weather - stay hydrated and seek shade."
	}
	return advice
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
