package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/voyagent/voyagent/core"
)

// outputSchema is the caller contract for a structured result: destination
// and travel dates must always be present (possibly "N/A"); everything else
// is optional partial data.
var outputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"destination":  map[string]any{"type": "string", "minLength": 1},
		"travel_dates": map[string]any{"type": "string", "minLength": 1},
	},
	"required": []any{"destination", "travel_dates"},
}

// produceOutput assembles the structured output from whatever data the run
// accumulated. Partial data is acceptable; the output is flagged incomplete
// rather than rejected.
func (r *run) produceOutput() {
	requirements := r.state.RequirementList()
	out := &core.StructuredOutput{
		Destination: valueOr(requirementValue(requirements, reqDestination), "N/A"),
		TravelDates: valueOr(requirementValue(requirements, reqDates), "N/A"),
	}

	r.fillFromToolResults(out)

	for _, citation := range r.state.CitationList() {
		if url := citation.Source["url"]; url != "" {
			out.Citations = append(out.Citations, url)
		} else {
			out.Citations = append(out.Citations, citation.ChunkID)
		}
	}
	// Recommendations contribute their sources too, like any other evidence.
	for _, rec := range out.Recommendations {
		if rec.URL != "" {
			out.Citations = append(out.Citations, rec.URL)
		}
	}

	if len(out.Recommendations) > 0 {
		out.NextSteps = append(out.NextSteps, "Book reservations early")
	}
	if out.CardRecommendation != nil {
		out.NextSteps = append(out.NextSteps, "Notify your bank of travel")
	}

	for _, rec := range r.state.ToolErrorList() {
		out.Incomplete = true
		out.Errors = append(out.Errors, fmt.Sprintf("tool %s: %s", rec.Tool, rec.Message))
	}
	if r.forced {
		out.Incomplete = true
		out.Errors = append(out.Errors, "request deadline expired before all phases completed")
	}
	if r.degraded {
		out.Incomplete = true
		out.Errors = append(out.Errors, "grounding retrieval degraded")
	}

	if err := validateOutput(out); err != nil {
		out.Incomplete = true
		out.Errors = append(out.Errors, err.Error())
	}

	r.state.SetStructuredOutput(out)
	r.logger.Info("output.produced", "incomplete", out.Incomplete, "citations", len(out.Citations))
}

// fillFromToolResults maps each tool's most recent successful payload onto
// the output fields. Payloads are the map-shaped results the built-in and
// conventional tools return; unknown shapes are ignored.
func (r *run) fillFromToolResults(out *core.StructuredOutput) {
	snapshot := r.state.Clone()
	for _, call := range snapshot.ToolsCalled {
		raw, ok := snapshot.ToolResults[call.ID]
		if !ok {
			continue
		}
		payload, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch call.Name {
		case "get_weather":
			weather := &core.WeatherInfo{
				Conditions:     getString(payload, "conditions"),
				Recommendation: getString(payload, "recommendation"),
			}
			if temp, ok := getFloat(payload, "temperature_c"); ok {
				weather.TemperatureC = &temp
			}
			out.Weather = weather
			if city := getString(payload, "city"); city != "" && out.Destination == "N/A" {
				out.Destination = city
			}
		case "web_search":
			out.Recommendations = out.Recommendations[:0]
			if results, ok := payload["results"].([]any); ok {
				for _, item := range results {
					entry, ok := item.(map[string]any)
					if !ok {
						continue
					}
					rec := core.Recommendation{
						Title:      getString(entry, "title"),
						Snippet:    getString(entry, "snippet"),
						URL:        getString(entry, "url"),
						PriceRange: getString(entry, "price_range"),
						Category:   getString(entry, "category"),
					}
					if rating, ok := getFloat(entry, "rating"); ok {
						rec.Rating = rating
					}
					out.Recommendations = append(out.Recommendations, rec)
				}
			}
		case "convert_fx":
			info := &core.CurrencyInfo{
				Base:   getString(payload, "base"),
				Target: getString(payload, "target"),
				Date:   getString(payload, "date"),
			}
			if rate, ok := getFloat(payload, "rate"); ok {
				info.Rate = rate
			}
			if amount, ok := getFloat(payload, "amount"); ok {
				info.Amount = amount
			}
			if converted, ok := getFloat(payload, "converted_amount"); ok {
				info.Converted = converted
			}
			out.CurrencyInfo = info
		case "recommend_card":
			out.CardRecommendation = &core.CardRecommendation{
				Card:    getString(payload, "card"),
				Benefit: getString(payload, "benefit"),
				FXFee:   getString(payload, "fx_fee"),
				Source:  getString(payload, "source"),
			}
		}
	}
}

// validateOutput checks the assembled output against the caller contract,
// returning a core.ValidationError naming the missing fields.
func validateOutput(out *core.StructuredOutput) error {
	doc := map[string]any{
		"destination":  out.Destination,
		"travel_dates": out.TravelDates,
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(outputSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &core.ValidationError{Message: err.Error()}
	}
	if result.Valid() {
		return nil
	}
	var missing []string
	for _, verr := range result.Errors() {
		missing = append(missing, verr.Field())
	}
	return &core.ValidationError{Missing: missing, Message: "structured output failed schema validation"}
}

// renderOutput serializes the output for the agent's conversation turn.
func renderOutput(out *core.StructuredOutput) string {
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("trip plan for %s (serialization failed: %v)", out.Destination, err)
	}
	return string(raw)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func getString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func getFloat(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
