package utils

import "time"

// Response envelope for every claims-service endpoint. The dashboard keys off
// the success flag alone; served_at lets support correlate a response with
// the sync timestamps on the claim itself.

type SuccessResponse struct {
	Success  bool      `json:"success"`
	Data     any       `json:"data"`
	ServedAt time.Time `json:"served_at"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// APIError carries a stable machine-readable code alongside the human
// message, so the dashboard can branch without string matching.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success:  true,
		Data:     data,
		ServedAt: time.Now().UTC(),
	}
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}
