package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jadewell/loon/internal/models"
)

// HTTPRateSource fetches exchange rates from an exchangerate-api style
// endpoint over HTTP.
type HTTPRateSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewHTTPRateSource creates a new HTTP rate source.
// Uses exchangerate-api.com as the default provider (free tier available)
func NewHTTPRateSource(apiKey string) RateSource {
	baseURL := "https://api.exchangerate-api.com/v4/latest"
	if apiKey != "" {
		baseURL = "https://v6.exchangerate-api.com/v6/" + apiKey + "/latest"
	}

	return &HTTPRateSource{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetRate retrieves the current exchange rate from one currency to another.
func (p *HTTPRateSource) GetRate(ctx context.Context, from, to models.Currency) (decimal.Decimal, time.Time, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, from)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, time.Time{}, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	// Decode generically to support both v6 (conversion_rates) and v4 (rates)
	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if r, ok := raw["result"].(string); ok && r != "success" {
		return decimal.Zero, time.Time{}, fmt.Errorf("API error: %s", r)
	}

	var ratesMap map[string]interface{}
	if cr, ok := raw["conversion_rates"].(map[string]interface{}); ok {
		ratesMap = cr
	} else if rr, ok := raw["rates"].(map[string]interface{}); ok {
		ratesMap = rr
	} else {
		return decimal.Zero, time.Time{}, fmt.Errorf("API response missing rates")
	}

	v, exists := ratesMap[string(to)]
	if !exists {
		return decimal.Zero, time.Time{}, fmt.Errorf("rate not found for %s to %s", from, to)
	}

	var rate decimal.Decimal
	switch t := v.(type) {
	case float64:
		rate = decimal.NewFromFloat(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return decimal.Zero, time.Time{}, fmt.Errorf("invalid rate for %s to %s", from, to)
		}
		rate = decimal.NewFromFloat(f)
	default:
		return decimal.Zero, time.Time{}, fmt.Errorf("invalid rate for %s to %s", from, to)
	}

	asOf := time.Now().UTC()
	if ts, ok := raw["time_last_update_unix"].(float64); ok && ts > 0 {
		asOf = time.Unix(int64(ts), 0).UTC()
	}

	return rate, asOf, nil
}
