// Package travel supplies the built-in travel tools: weather forecasts via
// Open-Meteo, currency conversion via Frankfurter, a model-backed travel
// search, and a network-free payment card recommender over a static
// benefits table.
package travel

import (
	"context"
	"strings"

	"github.com/voyagent/voyagent/tool"
)

// cardBenefit is one row of the static benefits table.
type cardBenefit struct {
	Card     string
	Category string
	Benefit  string
	FXFee    string
	Notes    string
}

var benefitsTable = []cardBenefit{
	{Card: "BankGold", Category: "dining", Benefit: "4x points on dining worldwide", FXFee: "none", Notes: "complimentary airport lounge access twice a year"},
	{Card: "BankGold", Category: "travel", Benefit: "3x points on flights and hotels", FXFee: "none", Notes: "trip delay insurance after 6 hours"},
	{Card: "VoyagerPlus", Category: "travel", Benefit: "5x points on airfare booked direct", FXFee: "none", Notes: "unlimited lounge access with guest"},
	{Card: "VoyagerPlus", Category: "hotels", Benefit: "10x points on prepaid hotels", FXFee: "none", Notes: "annual hotel credit"},
	{Card: "EverydayCash", Category: "general", Benefit: "2% cash back on all purchases", FXFee: "3%", Notes: "no annual fee"},
	{Card: "EverydayCash", Category: "shopping", Benefit: "3% cash back at supermarkets", FXFee: "3%", Notes: "purchase protection for 90 days"},
	{Card: "GlobeTrotter", Category: "general", Benefit: "1.5x miles on everything", FXFee: "none", Notes: "TSA PreCheck credit every 4 years"},
}

// NewCardRecommender returns the recommend_card tool. Given a spending
// category it picks the card with the strongest matching benefit, preferring
// cards without foreign transaction fees.
func NewCardRecommender() tool.Tool {
	return tool.NewFunctionTool(
		"recommend_card",
		"Recommend the best payment card for a travel spending category",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Spending category: dining, travel, hotels, shopping or general",
				},
				"country": map[string]any{
					"type":        "string",
					"description": "Destination country, used to weigh foreign transaction fees",
				},
				"amount": map[string]any{
					"type":        "number",
					"description": "Approximate spend amount in USD",
				},
			},
			"required": []any{"category"},
		},
		recommendCard,
	)
}

func recommendCard(_ context.Context, args map[string]any) (any, error) {
	category, _ := args["category"].(string)
	category = strings.ToLower(strings.TrimSpace(category))

	var best *cardBenefit
	for i := range benefitsTable {
		row := &benefitsTable[i]
		if row.Category != category {
			continue
		}
		if best == nil || (best.FXFee != "none" && row.FXFee == "none") {
			best = row
		}
	}
	if best == nil {
		// Fall back to the general-purpose row with the lowest FX fee.
		for i := range benefitsTable {
			row := &benefitsTable[i]
			if row.Category != "general" {
				continue
			}
			if best == nil || (best.FXFee != "none" && row.FXFee == "none") {
				best = row
			}
		}
	}
	return map[string]any{
		"card":    best.Card,
		"benefit": best.Benefit,
		"fx_fee":  best.FXFee,
		"source":  "knowledge_base",
	}, nil
}

// NewCardKnowledge returns the search_knowledge tool: a keyword lookup over
// the benefits table for questions about specific card perks.
func NewCardKnowledge() tool.Tool {
	return tool.NewFunctionTool(
		"search_knowledge",
		"Search the card benefits knowledge base",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text question about card benefits",
				},
				"card_name": map[string]any{
					"type":        "string",
					"description": "Restrict results to a single card",
				},
			},
			"required": []any{"query"},
		},
		searchKnowledge,
	)
}

func searchKnowledge(_ context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	cardName, _ := args["card_name"].(string)
	terms := strings.Fields(strings.ToLower(query))

	matches := make([]map[string]any, 0, 4)
	for _, row := range benefitsTable {
		if cardName != "" && !strings.EqualFold(cardName, row.Card) {
			continue
		}
		haystack := strings.ToLower(row.Card + " " + row.Category + " " + row.Benefit + " " + row.Notes)
		hit := cardName != "" && len(terms) == 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				hit = true
				break
			}
		}
		if hit {
			matches = append(matches, map[string]any{
				"card":     row.Card,
				"category": row.Category,
				"benefit":  row.Benefit,
				"fx_fee":   row.FXFee,
				"notes":    row.Notes,
			})
		}
	}
	return map[string]any{"matches": matches}, nil
}
