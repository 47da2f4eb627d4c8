package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voyagent/voyagent/model"
)

// PlannedCall is one tool invocation the planner wants executed.
type PlannedCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Planner decides which of the available tools to invoke for the collected
// requirements. Planners must only name tools from available; the
// orchestrator drops anything else.
type Planner interface {
	Plan(ctx context.Context, requirements []string, available []string) ([]PlannedCall, error)
}

// Requirement keys produced by the clarify phase and consumed by planners.
const (
	reqQuery       = "query"
	reqDestination = "destination"
	reqDates       = "dates"
	reqCurrency    = "currency"
	reqAmount      = "amount"
	reqIntent      = "intent"
	reqCard        = "card"
)

var (
	destinationRe = regexp.MustCompile(`(?i)\b(?:to|in|visit(?:ing)?|trip to)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`)
	datesRe       = regexp.MustCompile(`(?i)\b((?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{1,2}(?:\s*(?:-|to|until)\s*\d{1,2})?|next\s+(?:week|weekend|month))\b`)
	currencyRe    = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|CHF|CAD|AUD|CNY|SEK|NOK|MXN)\b`)
	amountRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

var currencyWords = map[string]string{
	"euro": "EUR", "euros": "EUR",
	"yen":    "JPY",
	"pound":  "GBP",
	"pounds": "GBP",
	"franc":  "CHF",
	"francs": "CHF",
}

var searchIntents = []string{"restaurant", "hotel", "attraction", "museum", "eat", "stay", "nightlife", "tour", "beach"}

// extractRequirements turns the user query plus recent context into the
// structured "key: value" requirement strings the planners work from. The
// raw query is always kept so downstream retrieval has full text to embed.
func extractRequirements(query string, context []string) []string {
	reqs := []string{reqQuery + ": " + query}
	text := query
	if len(context) > 0 {
		text = strings.Join(context, "\n") + "\n" + query
	}

	if m := destinationRe.FindStringSubmatch(query); m != nil {
		reqs = append(reqs, reqDestination+": "+m[1])
	} else if m := destinationRe.FindStringSubmatch(text); m != nil {
		// Fall back to earlier turns so follow-up questions keep their destination.
		reqs = append(reqs, reqDestination+": "+m[1])
	}
	if m := datesRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, reqDates+": "+m[1])
	}
	if m := currencyRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, reqCurrency+": "+m[1])
	} else {
		lower := strings.ToLower(text)
		for word, code := range currencyWords {
			if strings.Contains(lower, word) {
				reqs = append(reqs, reqCurrency+": "+code)
				break
			}
		}
	}
	if m := amountRe.FindStringSubmatch(query); m != nil {
		reqs = append(reqs, reqAmount+": "+m[1])
	}
	lower := strings.ToLower(text)
	for _, intent := range searchIntents {
		if strings.Contains(lower, intent) {
			reqs = append(reqs, reqIntent+": "+intent)
			break
		}
	}
	if strings.Contains(lower, "card") {
		reqs = append(reqs, reqCard+": yes")
	}
	return reqs
}

// requirementValue returns the value recorded for key, or "".
func requirementValue(requirements []string, key string) string {
	prefix := key + ": "
	for _, r := range requirements {
		if strings.HasPrefix(r, prefix) {
			return strings.TrimPrefix(r, prefix)
		}
	}
	return ""
}

// HeuristicPlanner maps recognized requirements onto the conventional travel
// tool set: weather for the destination, currency conversion, web search for
// venue intents, and card tools when cards are mentioned. It never errors;
// an unrecognized query simply yields an empty plan.
type HeuristicPlanner struct{}

// NewHeuristicPlanner creates a HeuristicPlanner.
func NewHeuristicPlanner() *HeuristicPlanner { return &HeuristicPlanner{} }

// Plan implements Planner.
func (p *HeuristicPlanner) Plan(_ context.Context, requirements []string, available []string) ([]PlannedCall, error) {
	registered := make(map[string]bool, len(available))
	for _, name := range available {
		registered[name] = true
	}

	var plan []PlannedCall
	destination := requirementValue(requirements, reqDestination)
	if destination != "" && registered["get_weather"] {
		plan = append(plan, PlannedCall{Tool: "get_weather", Args: map[string]any{"city": destination}})
	}
	if intent := requirementValue(requirements, reqIntent); intent != "" && registered["web_search"] {
		query := requirementValue(requirements, reqQuery)
		plan = append(plan, PlannedCall{Tool: "web_search", Args: map[string]any{"query": query, "max_results": float64(5)}})
	}
	if target := requirementValue(requirements, reqCurrency); target != "" && registered["convert_fx"] {
		amount := 100.0
		if raw := requirementValue(requirements, reqAmount); raw != "" {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				amount = parsed
			}
		}
		plan = append(plan, PlannedCall{Tool: "convert_fx", Args: map[string]any{"amount": amount, "base": "USD", "target": target}})
	}
	if requirementValue(requirements, reqCard) != "" {
		if registered["recommend_card"] {
			category := requirementValue(requirements, reqIntent)
			if category == "" {
				category = "general"
			}
			plan = append(plan, PlannedCall{Tool: "recommend_card", Args: map[string]any{"category": category}})
		}
		if registered["search_knowledge"] {
			plan = append(plan, PlannedCall{Tool: "search_knowledge", Args: map[string]any{"query": requirementValue(requirements, reqQuery)}})
		}
	}
	return plan, nil
}

// llmPlannerSystem instructs the model to answer with a bare JSON plan.
const llmPlannerSystem = `You plan tool calls for a travel concierge.
Reply with ONLY a JSON array; each element is {"tool": "<name>", "args": {...}}.
Use only the tools listed in the prompt. Reply [] when no tool applies.`

// LLMPlanner asks a completion model for the plan. Responses are expected to
// be a JSON array of {"tool", "args"} objects; surrounding prose and code
// fences are tolerated and stripped.
type LLMPlanner struct {
	model model.Model
}

// NewLLMPlanner creates an LLMPlanner over the given model.
func NewLLMPlanner(m model.Model) *LLMPlanner { return &LLMPlanner{model: m} }

// Plan implements Planner.
func (p *LLMPlanner) Plan(ctx context.Context, requirements []string, available []string) ([]PlannedCall, error) {
	prompt := fmt.Sprintf("Available tools: %s\nRequirements:\n%s",
		strings.Join(available, ", "), strings.Join(requirements, "\n"))

	raw, err := p.model.Complete(ctx, llmPlannerSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm planner: %w", err)
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return nil, fmt.Errorf("llm planner: %w", err)
	}

	registered := make(map[string]bool, len(available))
	for _, name := range available {
		registered[name] = true
	}
	kept := plan[:0]
	for _, call := range plan {
		if registered[call.Tool] {
			kept = append(kept, call)
		}
	}
	return kept, nil
}

// parsePlan extracts the first JSON array from raw, stripping markdown code
// fences when present.
func parsePlan(raw string) ([]PlannedCall, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		raw = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	if !strings.HasPrefix(raw, "[") {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end < start {
			return nil, fmt.Errorf("no JSON array in response")
		}
		raw = raw[start : end+1]
	}

	var plan []PlannedCall
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("invalid plan JSON: %w", err)
	}
	return plan, nil
}
