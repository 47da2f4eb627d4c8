package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voyagent/voyagent/tool"
)

const defaultFrankfurterURL = "https://api.frankfurter.app/latest"

// FXOptions configures the convert_fx tool.
type FXOptions struct {
	HTTPClient *http.Client

	// BaseURL overrides the Frankfurter endpoint.
	BaseURL string
}

type fxArgs struct {
	Amount float64 `json:"amount" description:"Amount to convert"`
	Base   string  `json:"base" description:"Source currency code, e.g. USD"`
	Target string  `json:"target" description:"Target currency code, e.g. EUR"`
}

type fxTool struct {
	client  *http.Client
	baseURL string
}

// NewCurrencyConverter returns the convert_fx tool backed by the Frankfurter
// exchange rate API.
func NewCurrencyConverter(optFns ...func(o *FXOptions)) tool.Tool {
	opts := FXOptions{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    defaultFrankfurterURL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	f := &fxTool{client: opts.HTTPClient, baseURL: opts.BaseURL}

	return tool.NewFunctionTool(
		"convert_fx",
		"Convert an amount between currencies using current exchange rates",
		tool.SchemaFromStruct(fxArgs{}),
		f.call,
	)
}

type frankfurterResponse struct {
	Rates map[string]float64 `json:"rates"`
	Date  string             `json:"date"`
}

func (f *fxTool) call(ctx context.Context, args map[string]any) (any, error) {
	amount, _ := args["amount"].(float64)
	base, _ := args["base"].(string)
	target, _ := args["target"].(string)
	base = strings.ToUpper(strings.TrimSpace(base))
	target = strings.ToUpper(strings.TrimSpace(target))

	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%g", amount))
	query.Set("from", base)
	query.Set("to", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, tool.NewToolError("convert_fx", fmt.Sprintf("building request: %v", err), tool.CodeExecution)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, tool.NewToolError("convert_fx", fmt.Sprintf("rate request failed: %v", err), tool.CodeExecution)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, tool.NewToolError("convert_fx", fmt.Sprintf("rate request returned %s", resp.Status), tool.CodeExecution)
	}

	var data frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, tool.NewToolError("convert_fx", fmt.Sprintf("decoding rate response: %v", err), tool.CodeExecution)
	}

	converted, ok := data.Rates[target]
	if !ok {
		return nil, tool.NewToolError("convert_fx", fmt.Sprintf("currency %q not supported", target), tool.CodeExecution)
	}

	var rate float64
	if amount > 0 {
		rate = converted / amount
	}

	return map[string]any{
		"base":             base,
		"target":           target,
		"amount":           amount,
		"converted_amount": math.Round(converted*100) / 100,
		"rate":             math.Round(rate*1e6) / 1e6,
		"date":             data.Date,
	}, nil
}
