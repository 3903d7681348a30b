package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"modelhub-backend/config"
	"modelhub-backend/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	pageSize            = 100
	pricingBatchSize    = 50 // hard API constraint
	maxRateLimitRetries = 3
	initialBackoff      = 2 * time.Second
	batchPause          = 5 * time.Second
)

// Client talks to the provider's catalog API. One value is constructed
// per sync pass and owned by the orchestrator; there is no package
// global.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client

	// pacer spaces pricing batches; sleep performs backoff waits.
	// Both are swapped out in tests.
	pacer *rate.Limiter
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ProviderBaseURL, "/"),
		apiKey:  cfg.ProviderAPIKey,
		http:    utils.NewHTTPClient(cfg.HTTPTimeout),
		pacer:   rate.NewLimiter(rate.Every(batchPause), 1),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// FetchModels pages through the full catalog. With includeSchemas the
// listing is requested with expand=schemas; if the server rejects that
// outright, the whole fetch restarts once without schemas. Cursors
// issued for the expanded representation are not assumed compatible
// with the plain one, so this is a restart, not a resume.
func (c *Client) FetchModels(ctx context.Context, includeSchemas bool) ([]RemoteModel, error) {
	models, err := c.fetchModelPages(ctx, includeSchemas)
	if err != nil && includeSchemas && isBadRequest(err) {
		zap.L().Warn("expanded model listing rejected, retrying without schemas", zap.Error(err))
		return c.fetchModelPages(ctx, false)
	}
	return models, err
}

func (c *Client) fetchModelPages(ctx context.Context, includeSchemas bool) ([]RemoteModel, error) {
	var all []RemoteModel
	cursor := ""

	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		if includeSchemas {
			q.Set("expand", "schemas")
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		body, status, err := c.get(ctx, "/models", q)
		if err != nil {
			return nil, &UpstreamError{Op: "models page", Err: err}
		}
		if status != http.StatusOK {
			return nil, &UpstreamError{Op: "models page", Status: status}
		}

		var page modelsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &UpstreamError{Op: "models page", Err: err}
		}

		for _, m := range page.Models {
			all = append(all, sanitizeModel(m))
		}

		// A missing cursor with has_more set would loop forever, so
		// an empty cursor also terminates.
		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func isBadRequest(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Status == http.StatusBadRequest
}

func sanitizeModel(m RemoteModel) RemoteModel {
	m.EndpointID = utils.SanitizeString(m.EndpointID)
	if m.Metadata != nil {
		m.Metadata.DisplayName = utils.SanitizeString(m.Metadata.DisplayName)
		m.Metadata.Description = utils.SanitizeString(m.Metadata.Description)
		m.Metadata.Category = utils.SanitizeString(m.Metadata.Category)
		m.Metadata.Status = utils.SanitizeString(m.Metadata.Status)
	}
	if len(m.Schema) > 0 {
		m.Schema = json.RawMessage(utils.SanitizeString(string(m.Schema)))
	}
	return m
}

// FetchPricing resolves quotes for the given endpoint ids in batches of
// at most 50. A batch answered with 404 contributes nothing and the
// fetch continues; rate limits are retried with 2s/4s/8s backoff before
// failing the whole fetch. Callers must tolerate an incomplete result.
func (c *Client) FetchPricing(ctx context.Context, endpointIDs []string) ([]PricingQuote, error) {
	var quotes []PricingQuote

	for start := 0; start < len(endpointIDs); start += pricingBatchSize {
		end := start + pricingBatchSize
		if end > len(endpointIDs) {
			end = len(endpointIDs)
		}

		// Paces batches 5s apart to stay under the provider's rate
		// ceiling. The first batch goes out immediately.
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		batch, err := c.fetchPricingBatch(ctx, endpointIDs[start:end])
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, batch...)
	}

	return quotes, nil
}

func (c *Client) fetchPricingBatch(ctx context.Context, ids []string) ([]PricingQuote, error) {
	backoff := initialBackoff

	for attempt := 0; ; attempt++ {
		q := url.Values{}
		for _, id := range ids {
			q.Add("endpoint_id", id)
		}

		body, status, err := c.get(ctx, "/models/pricing", q)
		if err != nil {
			return nil, &UpstreamError{Op: "pricing batch", Err: err}
		}

		switch {
		case status == http.StatusTooManyRequests:
			if attempt >= maxRateLimitRetries {
				return nil, fmt.Errorf("pricing batch of %d ids: %w", len(ids), ErrRateLimited)
			}
			zap.L().Warn("pricing batch rate limited, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
			continue

		case status == http.StatusNotFound:
			// Some endpoints legitimately have no pricing.
			return nil, nil

		case status != http.StatusOK:
			return nil, &UpstreamError{Op: "pricing batch", Status: status}
		}

		var pr pricingResponse
		if err := json.Unmarshal(body, &pr); err != nil {
			return nil, &UpstreamError{Op: "pricing batch", Err: err}
		}

		out := make([]PricingQuote, 0, len(pr.Prices))
		for _, quote := range pr.Prices {
			quote.EndpointID = utils.SanitizeString(quote.EndpointID)
			quote.Unit = utils.SanitizeString(quote.Unit)
			quote.Currency = utils.SanitizeString(quote.Currency)
			out = append(out, quote)
		}
		return out, nil
	}
}

// FetchModelSchema returns the raw request schema for one endpoint.
// The bytes are kept raw so the document's property order survives for
// the parser.
func (c *Client) FetchModelSchema(ctx context.Context, endpointID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("endpoint_id", endpointID)

	body, status, err := c.get(ctx, "/openapi.json", q)
	if err != nil {
		return nil, &UpstreamError{Op: "schema fetch", Err: err}
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", endpointID, ErrSchemaUnavailable)
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Op: "schema fetch", Status: status}
	}

	return json.RawMessage(utils.SanitizeString(string(body))), nil
}

// EstimateCost asks the provider for an advisory per-call cost. Any
// failure yields 0; estimation is never fatal.
func (c *Client) EstimateCost(ctx context.Context, endpointID string, callQuantity int) float64 {
	payload := estimateRequest{
		EstimateType: "call",
		Endpoints: map[string]estimateEndpoint{
			endpointID: {CallQuantity: callQuantity},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pricing/estimate", bytes.NewBuffer(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var er estimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return 0
	}
	return er.Estimates[endpointID].CostPerCall
}

// TestConnection reports whether a models fetch succeeds at all.
func (c *Client) TestConnection(ctx context.Context) bool {
	q := url.Values{}
	q.Set("limit", "1")

	_, status, err := c.get(ctx, "/models", q)
	return err == nil && status == http.StatusOK
}
