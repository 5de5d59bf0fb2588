package handler

import "github.com/shopfront/backend/internal/interfaces/http/dto"

// The types below exist for the swagger annotations only. Handlers write
// dto.Response, whose JSON shape they mirror.

// APIResponse is the envelope of a successful shopfront call with payload T
// @Description Success envelope; data holds the account, product, order or list
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the envelope for rejected calls such as INSUFFICIENT_STOCK
// @Description Failure envelope carrying the error code and message
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
