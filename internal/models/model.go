package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskType string

const (
	TaskTypeImage      TaskType = "IMAGE"
	TaskTypeVideo      TaskType = "VIDEO"
	TaskTypeAudio      TaskType = "AUDIO"
	TaskTypeText       TaskType = "TEXT"
	TaskTypeMultimodal TaskType = "MULTIMODAL"
)

// Model is a durable catalog record for one remote endpoint. Rows are
// created on first sight of an endpoint id and updated on every later
// sync that still sees it; the sync never deletes rows, so a transient
// provider outage cannot wipe the catalog.
type Model struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	EndpointID  string         `gorm:"uniqueIndex;not null" json:"endpoint_id"`
	Provider    string         `gorm:"index" json:"provider"`
	Name        string         `gorm:"index;not null" json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	TaskType    TaskType       `gorm:"index;not null;default:'MULTIMODAL'" json:"task_type"`
	Category    string         `json:"category"`
	InputSchema datatypes.JSON `gorm:"type:jsonb" json:"input_schema"`
	IsActive    bool           `gorm:"index;not null;default:true" json:"is_active"`
}

// ModelParameter is one UI-describable input of a model. The full set
// for a model is replaced on every sync pass, so rows never go stale
// relative to the stored schema.
type ModelParameter struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ModelID   uint      `gorm:"index:idx_model_param,unique;not null" json:"model_id"`
	Name      string    `gorm:"index:idx_model_param,unique;not null" json:"name"`
	// Coarse kind tag: string|number|boolean|enum|array|object
	Type          string         `gorm:"not null" json:"type"`
	Required      bool           `gorm:"not null;default:false" json:"required"`
	DefaultValue  datatypes.JSON `json:"default_value"`
	MinValue      *float64       `json:"min_value"`
	MaxValue      *float64       `json:"max_value"`
	AllowedValues datatypes.JSON `json:"allowed_values"`
	UILabel       string         `json:"ui_label"`
	UIPlaceholder string         `json:"ui_placeholder"`
	UIHelpText    string         `json:"ui_help_text"`
	UIOrder       int            `gorm:"not null;default:0" json:"ui_order"`
	UIGroup       string         `gorm:"not null;default:'general'" json:"ui_group"`
}

type PricingType string

const (
	PricingTypeFree  PricingType = "free"
	PricingTypeFixed PricingType = "fixed"
)

// ModelPricing is 1:1 with Model. credit_cost is recomputed from
// price_per_call and the current credit rate on every pass; historical
// quotes are not preserved.
type ModelPricing struct {
	ID             uint        `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	ModelID        uint        `gorm:"uniqueIndex;not null" json:"model_id"`
	PricePerCall   float64     `gorm:"not null;default:0.0" json:"price_per_call"`
	PricingType    PricingType `gorm:"not null;default:'free'" json:"pricing_type"`
	CreditCost     int         `gorm:"not null;default:1" json:"credit_cost"`
	PricingDetails JSON        `gorm:"type:jsonb;not null;default:'{}'" json:"pricing_details"`
	LastUpdated    time.Time   `json:"last_updated"`
}

// CreditRate is the admin-configured USD-per-credit conversion. The
// sync reads the single active row and falls back to the configured
// default when none exists.
type CreditRate struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	USDPerCredit float64   `gorm:"not null" json:"usd_per_credit"`
	IsActive     bool      `gorm:"index;not null;default:false" json:"is_active"`
}
