package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func newTestClient(baseURL string, sleeps *[]time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  "test-key",
		http:    &http.Client{Timeout: 5 * time.Second},
		pacer:   rate.NewLimiter(rate.Inf, 0),
		sleep: func(ctx context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func TestFetchModelsPagination(t *testing.T) {
	pages := map[string]modelsPage{
		"": {
			Models:     []RemoteModel{{EndpointID: "p/a"}, {EndpointID: "p/b"}},
			NextCursor: "c1",
			HasMore:    true,
		},
		"c1": {
			Models:  []RemoteModel{{EndpointID: "p/c"}},
			HasMore: false,
		},
	}

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(pages[r.URL.Query().Get("cursor")])
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	models, err := client.FetchModels(context.Background(), false)

	assert.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Len(t, models, 3)
	assert.Equal(t, "p/a", models[0].EndpointID)
	assert.Equal(t, "p/b", models[1].EndpointID)
	assert.Equal(t, "p/c", models[2].EndpointID)
}

func TestFetchModelsExpandFallback(t *testing.T) {
	var expandRequests, plainRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("expand") != "" {
			expandRequests++
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		plainRequests++
		json.NewEncoder(w).Encode(modelsPage{
			Models: []RemoteModel{{EndpointID: "p/a"}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	models, err := client.FetchModels(context.Background(), true)

	assert.NoError(t, err)
	// One rejected expanded request, then a full restart without it.
	assert.Equal(t, 1, expandRequests)
	assert.Equal(t, 1, plainRequests)
	assert.Len(t, models, 1)
}

func TestFetchModelsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.FetchModels(context.Background(), false)

	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusInternalServerError, ue.Status)
}

func TestFetchPricingBatching(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["endpoint_id"]
		batchSizes = append(batchSizes, len(ids))

		prices := make([]PricingQuote, 0, len(ids))
		for _, id := range ids {
			prices = append(prices, PricingQuote{EndpointID: id, UnitPrice: 0.01, Unit: "call", Currency: "USD"})
		}
		json.NewEncoder(w).Encode(pricingResponse{Prices: prices})
	}))
	defer server.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("p/m-%d", i)
	}

	client := newTestClient(server.URL, nil)
	quotes, err := client.FetchPricing(context.Background(), ids)

	assert.NoError(t, err)
	// ceil(120/50) = 3 batches, none above the hard limit
	assert.Equal(t, []int{50, 50, 20}, batchSizes)
	assert.Len(t, quotes, 120)
}

func TestFetchPricingNotFoundBatchContinues(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(pricingResponse{Prices: []PricingQuote{
			{EndpointID: "p/priced", UnitPrice: 0.5, Unit: "call", Currency: "USD"},
		}})
	}))
	defer server.Close()

	ids := make([]string, 60) // two batches
	for i := range ids {
		ids[i] = fmt.Sprintf("p/m-%d", i)
	}

	client := newTestClient(server.URL, nil)
	quotes, err := client.FetchPricing(context.Background(), ids)

	assert.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Len(t, quotes, 1)
	assert.Equal(t, "p/priced", quotes[0].EndpointID)
}

func TestFetchPricingBackoffSchedule(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)
	_, err := client.FetchPricing(context.Background(), []string{"p/hot"})

	assert.ErrorIs(t, err, ErrRateLimited)
	// Failure surfaces on the 4th rate-limit response.
	assert.Equal(t, 4, requests)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeps)
}

func TestFetchPricingOtherErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := newTestClient(server.URL, &sleeps)
	_, err := client.FetchPricing(context.Background(), []string{"p/a"})

	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Empty(t, sleeps) // no retry for non-rate-limit failures
}

func TestFetchModelSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("endpoint_id") == "p/with-schema" {
			w.Write([]byte(`{"properties":{"prompt":{"type":"string"}}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	raw, err := client.FetchModelSchema(context.Background(), "p/with-schema")
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "prompt")

	_, err = client.FetchModelSchema(context.Background(), "p/bare")
	assert.ErrorIs(t, err, ErrSchemaUnavailable)
}

func TestEstimateCost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req estimateRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Contains(t, req.Endpoints, "p/a")

		w.Write([]byte(`{"estimates":{"p/a":{"cost_per_call":0.25}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	assert.Equal(t, 0.25, client.EstimateCost(context.Background(), "p/a", 10))
}

func TestEstimateCostSwallowsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	assert.Equal(t, float64(0), client.EstimateCost(context.Background(), "p/a", 10))
}

func TestTestConnection(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(modelsPage{})
	}))
	defer okServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer badServer.Close()

	assert.True(t, newTestClient(okServer.URL, nil).TestConnection(context.Background()))
	assert.False(t, newTestClient(badServer.URL, nil).TestConnection(context.Background()))
}
