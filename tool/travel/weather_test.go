package travel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeatherServer(t *testing.T, geocodeBody, forecastBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geocodeBody)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherSummarizesForecast(t *testing.T) {
	srv := newWeatherServer(t,
		`{"results":[{"latitude":35.68,"longitude":139.69,"name":"Tokyo","country":"Japan"}]}`,
		`{"daily":{
			"weathercode":[0,1,2,61,0,1,0],
			"temperature_2m_max":[20,22,21,19,23,20,22],
			"temperature_2m_min":[12,13,11,12,14,12,13]
		}}`,
	)

	w := NewWeather(func(o *WeatherOptions) {
		o.GeocodeURL = srv.URL + "/geocode"
		o.ForecastURL = srv.URL + "/forecast"
	})

	result, err := w.Call(context.Background(), map[string]any{"city": "Tokyo"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "Tokyo", payload["city"])
	assert.Equal(t, "Japan", payload["country"])
	assert.Equal(t, "sunny", payload["conditions"], "5 of 7 codes are sunny")
	assert.Equal(t, 7, payload["forecast_days"])

	// avg max 21.0, avg min 12.43 -> avg 16.7
	assert.InDelta(t, 16.7, payload["temperature_c"].(float64), 0.1)
	assert.Contains(t, payload["recommendation"], "sunscreen")
}

func TestWeatherColdAdvice(t *testing.T) {
	srv := newWeatherServer(t,
		`{"results":[{"latitude":64.1,"longitude":-21.9,"name":"Reykjavik","country":"Iceland"}]}`,
		`{"daily":{
			"weathercode":[61,63,61],
			"temperature_2m_max":[4,5,3],
			"temperature_2m_min":[-2,-1,0]
		}}`,
	)

	w := NewWeather(func(o *WeatherOptions) {
		o.GeocodeURL = srv.URL + "/geocode"
		o.ForecastURL = srv.URL + "/forecast"
	})

	result, err := w.Call(context.Background(), map[string]any{"city": "Reykjavik"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, "rainy", payload["conditions"])
	assert.Contains(t, payload["recommendation"], "umbrella")
	assert.Contains(t, payload["recommendation"], "warm clothing")
}

func TestWeatherCityNotFound(t *testing.T) {
	srv := newWeatherServer(t, `{"results":[]}`, `{}`)

	w := NewWeather(func(o *WeatherOptions) {
		o.GeocodeURL = srv.URL + "/geocode"
		o.ForecastURL = srv.URL + "/forecast"
	})

	_, err := w.Call(context.Background(), map[string]any{"city": "Atlantis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestWeatherRequiresCity(t *testing.T) {
	w := NewWeather()
	_, err := w.Call(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestDominantCondition(t *testing.T) {
	assert.Equal(t, "unknown", dominantCondition(nil))
	assert.Equal(t, "sunny", dominantCondition([]int{0, 1, 1}))
	assert.Equal(t, "cloudy", dominantCondition([]int{2, 3, 3, 0}))
	assert.Equal(t, "rainy", dominantCondition([]int{61, 80, 95, 0}))
	assert.Equal(t, "mixed", dominantCondition([]int{45, 48}))
}
