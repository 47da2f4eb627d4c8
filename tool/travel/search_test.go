package travel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel returns its canned response for any prompt.
type fakeModel struct {
	response string
	err      error
}

func (m *fakeModel) Complete(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

func TestWebSearchParsesResults(t *testing.T) {
	m := &fakeModel{response: `[
		{"title":"Park Hotel","url":"https://example.com/park","snippet":"City views","rating":4.5,"category":"hotel"},
		{"title":"Garden Inn","url":"https://example.com/garden","snippet":"Quiet area"}
	]`}

	ws := NewWebSearch(m)
	result, err := ws.Call(context.Background(), map[string]any{"query": "hotels in Tokyo"})
	require.NoError(t, err)

	results := result.(map[string]any)["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, "Park Hotel", first["title"])
	assert.Equal(t, "https://example.com/park", first["url"])
	assert.Equal(t, 4.5, first["rating"])
	assert.Equal(t, "hotel", first["category"])
}

func TestWebSearchStripsCodeFences(t *testing.T) {
	m := &fakeModel{response: "```json\n[{\"title\":\"A\",\"url\":\"https://a\",\"snippet\":\"s\"}]\n```"}

	ws := NewWebSearch(m)
	result, err := ws.Call(context.Background(), map[string]any{"query": "anything"})
	require.NoError(t, err)

	results := result.(map[string]any)["results"].([]any)
	require.Len(t, results, 1)
}

func TestWebSearchExtractsEmbeddedArray(t *testing.T) {
	m := &fakeModel{response: `Here are the results: [{"title":"A","url":"https://a","snippet":"s"}] hope this helps!`}

	ws := NewWebSearch(m)
	result, err := ws.Call(context.Background(), map[string]any{"query": "anything"})
	require.NoError(t, err)

	results := result.(map[string]any)["results"].([]any)
	require.Len(t, results, 1)
}

func TestWebSearchCapsResults(t *testing.T) {
	m := &fakeModel{response: `[
		{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"}
	]`}

	ws := NewWebSearch(m, func(o *SearchOptions) { o.MaxResults = 3 })

	result, err := ws.Call(context.Background(), map[string]any{"query": "q"})
	require.NoError(t, err)
	assert.Len(t, result.(map[string]any)["results"].([]any), 3)

	result, err = ws.Call(context.Background(), map[string]any{"query": "q", "max_results": 2.0})
	require.NoError(t, err)
	assert.Len(t, result.(map[string]any)["results"].([]any), 2)
}

func TestWebSearchModelFailure(t *testing.T) {
	ws := NewWebSearch(&fakeModel{err: errors.New("rate limited")})
	_, err := ws.Call(context.Background(), map[string]any{"query": "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestWebSearchUnparseableResponse(t *testing.T) {
	ws := NewWebSearch(&fakeModel{response: "I cannot answer that."})
	_, err := ws.Call(context.Background(), map[string]any{"query": "q"})
	require.Error(t, err)
}
