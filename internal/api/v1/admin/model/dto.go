package model

type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type EstimateRequest struct {
	CallQuantity int `json:"call_quantity" binding:"required,min=1"`
}

type EstimateResponse struct {
	EndpointID   string  `json:"endpoint_id"`
	CallQuantity int     `json:"call_quantity"`
	TotalPrice   float64 `json:"total_price"`
}
