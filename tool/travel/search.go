package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voyagent/voyagent/model"
	"github.com/voyagent/voyagent/tool"
)

// SearchOptions configures the web_search tool.
type SearchOptions struct {
	// MaxResults caps how many results a single search returns.
	MaxResults int
}

type searchArgs struct {
	Query      string `json:"query" description:"Raw search query, e.g. 'boutique hotels in Lisbon under $200/night'"`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum number of results to return"`
}

const searchSystem = `You are a travel search assistant with broad knowledge of destinations,
hotels, restaurants and attractions. Answer the search query with a JSON array of results.
Each result must have these fields: title, url, snippet. Optionally include price_range,
rating (number) and category. Return ONLY the JSON array, no other text.`

type searchTool struct {
	model      model.Model
	maxResults int
}

// NewWebSearch returns the web_search tool. Results are produced by the
// given model rather than a live search index, so they serve as grounded
// suggestions, not fresh web data.
func NewWebSearch(m model.Model, optFns ...func(o *SearchOptions)) tool.Tool {
	opts := SearchOptions{MaxResults: 5}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &searchTool{model: m, maxResults: opts.MaxResults}

	return tool.NewFunctionTool(
		"web_search",
		"General-purpose travel search for hotels, restaurants and attractions",
		tool.SchemaFromStruct(searchArgs{}),
		s.call,
	)
}

func (s *searchTool) call(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	max := s.maxResults
	if n, ok := args["max_results"].(float64); ok && int(n) > 0 && int(n) < max {
		max = int(n)
	}

	raw, err := s.model.Complete(ctx, searchSystem, fmt.Sprintf("Search for: %s", query))
	if err != nil {
		return nil, tool.NewToolError("web_search", fmt.Sprintf("search completion failed: %v", err), tool.CodeExecution)
	}

	results, err := parseSearchResults(raw)
	if err != nil {
		return nil, tool.NewToolError("web_search", fmt.Sprintf("parsing results: %v", err), tool.CodeExecution)
	}
	if len(results) > max {
		results = results[:max]
	}
	return map[string]any{"results": results}, nil
}

// parseSearchResults extracts the first JSON array from a model response,
// tolerating code fences and surrounding prose.
func parseSearchResults(raw string) ([]any, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}
	if !strings.HasPrefix(raw, "[") {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end < start {
			return nil, fmt.Errorf("no JSON array in response")
		}
		raw = raw[start : end+1]
	}

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}

	results := make([]any, 0, len(parsed))
	for _, entry := range parsed {
		normalized := map[string]any{
			"title":   stringField(entry, "title", "Unknown"),
			"url":     stringField(entry, "url", ""),
			"snippet": stringField(entry, "snippet", ""),
		}
		for _, key := range []string{"price_range", "rating", "category"} {
			if v, ok := entry[key]; ok {
				normalized[key] = v
			}
		}
		results = append(results, normalized)
	}
	return results, nil
}

func stringField(entry map[string]any, key, fallback string) string {
	if s, ok := entry[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
