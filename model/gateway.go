package model

import "time"

type TINStatus string

const (
	TINValid   TINStatus = "valid"
	TINInvalid TINStatus = "invalid"
	TINError   TINStatus = "error"
)

// TINResult is the outcome of a taxpayer identification check.
type TINResult struct {
	Status  TINStatus `json:"status"`
	Message string    `json:"message"`
}

// GatewayResponse is a gateway reply as returned to callers. Data is nil
// when the body is not JSON.
type GatewayResponse struct {
	Code int    `json:"code"`
	Body string `json:"body"`
	Data any    `json:"data"`
}

// CancelResult is the outcome of a cancellation. Success is true iff Code is 2xx.
type CancelResult struct {
	Code    int    `json:"code"`
	Body    string `json:"body"`
	Success bool   `json:"success"`
}

// CancelRequest is the fixed body sent to the document state endpoint.
type CancelRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Setting is a persisted key/value pair overriding configuration defaults.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
