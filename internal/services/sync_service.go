package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"modelhub-backend/internal/database"
	"modelhub-backend/internal/models"
	"modelhub-backend/internal/provider"
	"modelhub-backend/internal/schema"
	"modelhub-backend/internal/utils"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogClient is the slice of the provider client the sync needs.
type CatalogClient interface {
	TestConnection(ctx context.Context) bool
	FetchModels(ctx context.Context, includeSchemas bool) ([]provider.RemoteModel, error)
	FetchPricing(ctx context.Context, endpointIDs []string) ([]provider.PricingQuote, error)
	FetchModelSchema(ctx context.Context, endpointID string) (json.RawMessage, error)
}

// SyncError records one model that could not be reconciled. Errors are
// informational; they never abort the pass.
type SyncError struct {
	Model string `json:"model"`
	Error string `json:"error"`
}

// SyncResult accumulates over one pass and is returned once.
type SyncResult struct {
	ModelsAdded     int           `json:"models_added"`
	ModelsUpdated   int           `json:"models_updated"`
	ParametersAdded int           `json:"parameters_added"`
	PricingUpdated  int           `json:"pricing_updated"`
	Errors          []SyncError   `json:"errors"`
	Duration        time.Duration `json:"duration"`
}

// ValidationError marks a remote model too malformed to reconcile.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid model record: " + e.Reason
}

// PersistenceError wraps a store write failure during reconciliation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SyncOptions tune one pass. Zero value is usable.
type SyncOptions struct {
	Classifier TaskTypeClassifier
	// USD per credit used when no active CreditRate row exists.
	DefaultCreditRate float64
}

// SyncCatalog runs one full pass: connectivity check, credit-rate
// lookup, catalog fetch, pricing fetch, then a sequential per-model
// reconcile. One bad model never aborts the pass; only a failed
// connectivity check or catalog fetch does. Partial writes from
// earlier models are never rolled back.
func SyncCatalog(ctx context.Context, client CatalogClient, opts SyncOptions) (*SyncResult, error) {
	start := time.Now()

	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}

	if !client.TestConnection(ctx) {
		return nil, provider.ErrUpstreamUnavailable
	}

	creditRate := GetActiveCreditRate(opts.DefaultCreditRate)

	remoteModels, err := client.FetchModels(ctx, true)
	if err != nil {
		return nil, err
	}
	zap.L().Info("fetched remote catalog", zap.Int("models", len(remoteModels)))

	endpointIDs := make([]string, 0, len(remoteModels))
	for _, m := range remoteModels {
		if m.EndpointID != "" {
			endpointIDs = append(endpointIDs, m.EndpointID)
		}
	}

	// Pricing failure is downgraded: the pass continues and every
	// model is priced as having no pricing data.
	quotes := make(map[string]provider.PricingQuote)
	fetched, err := client.FetchPricing(ctx, endpointIDs)
	if err != nil {
		zap.L().Warn("pricing fetch failed, continuing without pricing", zap.Error(err))
	} else {
		for _, quote := range fetched {
			quotes[quote.EndpointID] = quote
		}
	}

	result := &SyncResult{}
	for _, remote := range remoteModels {
		// Models are a cheap, safe cancellation point; never cancel
		// mid-model.
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Duration = time.Since(start)
			return result, ctxErr
		}

		if err := reconcileModel(ctx, client, remote, quotes, creditRate, classifier, result); err != nil {
			zap.L().Warn("model reconciliation failed",
				zap.String("endpoint_id", remote.EndpointID),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, SyncError{Model: remote.EndpointID, Error: err.Error()})
		}
	}

	result.Duration = time.Since(start)
	zap.L().Info("sync pass finished",
		zap.Int("added", result.ModelsAdded),
		zap.Int("updated", result.ModelsUpdated),
		zap.Int("parameters", result.ParametersAdded),
		zap.Int("pricing", result.PricingUpdated),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// reconcileModel merges one remote model into the store. The model
// upsert, parameter replacement and pricing upsert run in a single
// transaction, so a mid-step failure cannot leave the model with stale
// parameters or stale pricing.
func reconcileModel(
	ctx context.Context,
	client CatalogClient,
	remote provider.RemoteModel,
	quotes map[string]provider.PricingQuote,
	creditRate float64,
	classifier TaskTypeClassifier,
	result *SyncResult,
) error {
	if remote.EndpointID == "" {
		return &ValidationError{Reason: "missing endpoint id"}
	}
	if remote.Metadata == nil {
		return &ValidationError{Reason: "missing metadata"}
	}

	taskType := classifier.Classify(remote.EndpointID, remote.Metadata.Category)

	pricePerCall := 0.0
	pricingType := models.PricingTypeFree
	pricingDetails := models.JSON{}
	if quote, ok := quotes[remote.EndpointID]; ok {
		pricePerCall = quote.UnitPrice
		if pricePerCall > 0 {
			pricingType = models.PricingTypeFixed
		}
		pricingDetails = models.JSON{
			"unit":     quote.Unit,
			"currency": quote.Currency,
		}
	}
	creditCost := CalculateCreditCost(pricePerCall, creditRate)

	rawSchema := remote.Schema
	if len(rawSchema) == 0 {
		fetched, err := client.FetchModelSchema(ctx, remote.EndpointID)
		if err != nil {
			if !errors.Is(err, provider.ErrSchemaUnavailable) {
				return err
			}
			// No published schema: keep the model, skip parameters.
			rawSchema = nil
		} else {
			rawSchema = fetched
		}
	}

	normalized := schema.Resolve(rawSchema)
	params := schema.Parse(normalized)

	var isNew bool
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		modelID, created, err := upsertModel(tx, remote, taskType, normalized)
		if err != nil {
			return err
		}
		isNew = created

		if err := replaceParameters(tx, modelID, params); err != nil {
			return err
		}
		return upsertPricing(tx, modelID, pricePerCall, pricingType, creditCost, pricingDetails)
	})
	if err != nil {
		return err
	}

	if isNew {
		result.ModelsAdded++
	} else {
		result.ModelsUpdated++
	}
	result.ParametersAdded += len(params)
	result.PricingUpdated++
	return nil
}

func upsertModel(tx *gorm.DB, remote provider.RemoteModel, taskType models.TaskType, rawSchema json.RawMessage) (uint, bool, error) {
	providerName, name := splitEndpointID(remote.EndpointID)

	var existing models.Model
	findErr := tx.Where("endpoint_id = ?", remote.EndpointID).First(&existing).Error
	isNew := errors.Is(findErr, gorm.ErrRecordNotFound)
	if findErr != nil && !isNew {
		return 0, false, &PersistenceError{Op: "model lookup", Err: findErr}
	}

	if isNew {
		record := models.Model{
			EndpointID:  utils.SanitizeString(remote.EndpointID),
			Provider:    utils.SanitizeString(providerName),
			Name:        utils.SanitizeString(name),
			DisplayName: utils.SanitizeString(remote.Metadata.DisplayName),
			Description: utils.SanitizeString(remote.Metadata.Description),
			TaskType:    taskType,
			Category:    utils.SanitizeString(remote.Metadata.Category),
			InputSchema: datatypes.JSON(rawSchema),
			IsActive:    true,
		}
		if err := tx.Create(&record).Error; err != nil {
			return 0, false, &PersistenceError{Op: "model insert", Err: err}
		}
		return record.ID, true, nil
	}

	existing.Provider = utils.SanitizeString(providerName)
	existing.Name = utils.SanitizeString(name)
	existing.DisplayName = utils.SanitizeString(remote.Metadata.DisplayName)
	existing.Description = utils.SanitizeString(remote.Metadata.Description)
	existing.TaskType = taskType
	existing.Category = utils.SanitizeString(remote.Metadata.Category)
	existing.InputSchema = datatypes.JSON(rawSchema)
	if err := tx.Save(&existing).Error; err != nil {
		return 0, false, &PersistenceError{Op: "model update", Err: err}
	}
	return existing.ID, false, nil
}

// replaceParameters swaps the full parameter set: delete everything,
// then bulk-insert the fresh list. No incremental diffing.
func replaceParameters(tx *gorm.DB, modelID uint, params []schema.Parameter) error {
	if err := tx.Where("model_id = ?", modelID).Delete(&models.ModelParameter{}).Error; err != nil {
		return &PersistenceError{Op: "parameter delete", Err: err}
	}
	if len(params) == 0 {
		return nil
	}

	rows := make([]models.ModelParameter, 0, len(params))
	for _, p := range params {
		row := models.ModelParameter{
			ModelID:       modelID,
			Name:          utils.SanitizeString(p.Name),
			Type:          p.Type,
			Required:      p.Required,
			MinValue:      p.MinValue,
			MaxValue:      p.MaxValue,
			UILabel:       utils.SanitizeString(p.UILabel),
			UIPlaceholder: utils.SanitizeString(p.UIPlaceholder),
			UIHelpText:    utils.SanitizeString(p.UIHelpText),
			UIOrder:       p.UIOrder,
			UIGroup:       utils.SanitizeString(p.UIGroup),
		}
		if p.DefaultValue != nil {
			if encoded, err := json.Marshal(utils.SanitizeValue(p.DefaultValue)); err == nil {
				row.DefaultValue = datatypes.JSON(encoded)
			}
		}
		if p.AllowedValues != nil {
			if encoded, err := json.Marshal(utils.SanitizeValue(p.AllowedValues)); err == nil {
				row.AllowedValues = datatypes.JSON(encoded)
			}
		}
		rows = append(rows, row)
	}

	if err := tx.Create(&rows).Error; err != nil {
		return &PersistenceError{Op: "parameter insert", Err: err}
	}
	return nil
}

func upsertPricing(tx *gorm.DB, modelID uint, pricePerCall float64, pricingType models.PricingType, creditCost int, details models.JSON) error {
	sanitized := utils.SanitizeValue(map[string]interface{}(details)).(map[string]interface{})

	var pricing models.ModelPricing
	findErr := tx.Where("model_id = ?", modelID).First(&pricing).Error
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return &PersistenceError{Op: "pricing lookup", Err: findErr}
	}

	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		pricing = models.ModelPricing{
			ModelID:        modelID,
			PricePerCall:   pricePerCall,
			PricingType:    pricingType,
			CreditCost:     creditCost,
			PricingDetails: models.JSON(sanitized),
			LastUpdated:    time.Now(),
		}
		if err := tx.Create(&pricing).Error; err != nil {
			return &PersistenceError{Op: "pricing insert", Err: err}
		}
		return nil
	}

	pricing.PricePerCall = pricePerCall
	pricing.PricingType = pricingType
	pricing.CreditCost = creditCost
	pricing.PricingDetails = models.JSON(sanitized)
	pricing.LastUpdated = time.Now()
	if err := tx.Save(&pricing).Error; err != nil {
		return &PersistenceError{Op: "pricing update", Err: err}
	}
	return nil
}

// splitEndpointID breaks "provider/model-name" into its halves. An id
// without a slash counts entirely as the name.
func splitEndpointID(endpointID string) (string, string) {
	if idx := strings.Index(endpointID, "/"); idx > 0 {
		return endpointID[:idx], endpointID[idx+1:]
	}
	return "", endpointID
}
