package provider

import "encoding/json"

// RemoteModel is one catalog entry as returned by the provider. It
// lives only for the duration of a sync pass and is never persisted
// verbatim.
type RemoteModel struct {
	EndpointID string          `json:"endpoint_id"`
	Metadata   *ModelMetadata  `json:"metadata"`
	Schema     json.RawMessage `json:"openapi,omitempty"`
}

type ModelMetadata struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

// PricingQuote is a transient per-endpoint price as quoted by the
// provider. unit is typically "call".
type PricingQuote struct {
	EndpointID string  `json:"endpoint_id"`
	UnitPrice  float64 `json:"unit_price"`
	Unit       string  `json:"unit"`
	Currency   string  `json:"currency"`
}

type modelsPage struct {
	Models     []RemoteModel `json:"models"`
	NextCursor string        `json:"next_cursor"`
	HasMore    bool          `json:"has_more"`
}

type pricingResponse struct {
	Prices []PricingQuote `json:"prices"`
}

type estimateRequest struct {
	EstimateType string                      `json:"estimate_type"`
	Endpoints    map[string]estimateEndpoint `json:"endpoints"`
}

type estimateEndpoint struct {
	CallQuantity int `json:"call_quantity"`
}

type estimateResponse struct {
	Estimates map[string]struct {
		CostPerCall float64 `json:"cost_per_call"`
	} `json:"estimates"`
}
