package dto

type PredictRequestDTO struct {
	Metric string            `json:"metric" binding:"required"`
	Labels map[string]string `json:"labels,omitempty"`
	Method string            `json:"method,omitempty" binding:"omitempty,oneof=linear_regression moving_average exponential_smoothing"`
}
