package services

import (
	"math"

	"modelhub-backend/internal/database"
	"modelhub-backend/internal/models"

	"go.uber.org/zap"
)

// DefaultCreditRate is the USD-per-credit fallback when no active rate
// row exists and no override is configured.
const DefaultCreditRate = 0.001

// GetActiveCreditRate reads the admin-configured USD-per-credit rate.
// Lookup failure is non-fatal: the sync proceeds on the default.
func GetActiveCreditRate(defaultRate float64) float64 {
	if defaultRate <= 0 {
		defaultRate = DefaultCreditRate
	}

	var rate models.CreditRate
	err := database.DB.Where("is_active = ?", true).Order("updated_at desc").First(&rate).Error
	if err != nil {
		zap.L().Warn("no active credit rate, using default", zap.Float64("default", defaultRate), zap.Error(err))
		return defaultRate
	}
	if rate.USDPerCredit <= 0 {
		return defaultRate
	}
	return rate.USDPerCredit
}

// CalculateCreditCost converts a per-call USD price into billable
// credits: max(1, ceil(price/rate)). Free and near-free models still
// bill a minimum of one credit.
func CalculateCreditCost(pricePerCall, creditRate float64) int {
	if creditRate <= 0 {
		creditRate = DefaultCreditRate
	}
	if pricePerCall <= 0 {
		return 1
	}

	cost := int(math.Ceil(pricePerCall / creditRate))
	if cost < 1 {
		return 1
	}
	return cost
}
