package orchestrator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagent/voyagent/core"
)

func TestValidateOutput(t *testing.T) {
	out := &core.StructuredOutput{Destination: "Tokyo", TravelDates: "next week"}
	assert.NoError(t, validateOutput(out))

	out = &core.StructuredOutput{Destination: "", TravelDates: "next week"}
	err := validateOutput(out)
	var valErr *core.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Missing, "destination")
}

func TestRenderOutputIsJSON(t *testing.T) {
	out := &core.StructuredOutput{Destination: "Tokyo", TravelDates: "N/A", Incomplete: true}
	rendered := renderOutput(out)

	var decoded core.StructuredOutput
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	assert.Equal(t, "Tokyo", decoded.Destination)
	assert.True(t, decoded.Incomplete)
}

func TestFillFromToolResultsLastCallWins(t *testing.T) {
	state := core.NewAgentState("sess-1", 2)
	first := state.RecordToolCall("get_weather", nil)
	state.RecordToolResult(first.ID, map[string]any{"conditions": "rainy", "temperature_c": 9.0})
	second := state.RecordToolCall("get_weather", nil)
	state.RecordToolResult(second.ID, map[string]any{"conditions": "sunny", "temperature_c": 21.0})

	r := &run{state: state}
	out := &core.StructuredOutput{Destination: "N/A"}
	r.fillFromToolResults(out)

	require.NotNil(t, out.Weather)
	assert.Equal(t, "sunny", out.Weather.Conditions)
	assert.Equal(t, 21.0, *out.Weather.TemperatureC)
}

func TestFillFromToolResultsIgnoresUnknownShapes(t *testing.T) {
	state := core.NewAgentState("sess-1", 2)
	call := state.RecordToolCall("get_weather", nil)
	state.RecordToolResult(call.ID, "just a string")

	r := &run{state: state}
	out := &core.StructuredOutput{}
	r.fillFromToolResults(out)
	assert.Nil(t, out.Weather)
}

func TestFillFromToolResultsSearch(t *testing.T) {
	state := core.NewAgentState("sess-1", 2)
	call := state.RecordToolCall("web_search", nil)
	state.RecordToolResult(call.ID, map[string]any{
		"results": []any{
			map[string]any{"title": "Park Hotel", "url": "https://example.com/p", "snippet": "views", "rating": 4.5},
		},
	})

	r := &run{state: state}
	out := &core.StructuredOutput{}
	r.fillFromToolResults(out)

	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, "Park Hotel", out.Recommendations[0].Title)
	assert.Equal(t, 4.5, out.Recommendations[0].Rating)
}

func TestGetFloatCoercion(t *testing.T) {
	payload := map[string]any{"f": 1.5, "i": 2, "s": "nope"}

	f, ok := getFloat(payload, "f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	i, ok := getFloat(payload, "i")
	assert.True(t, ok)
	assert.Equal(t, 2.0, i)

	_, ok = getFloat(payload, "s")
	assert.False(t, ok)
	_, ok = getFloat(payload, "missing")
	assert.False(t, ok)
}
