// file: model/request.go

package model

// ValidateTINRequest defines the payload for a taxpayer identification check.
type ValidateTINRequest struct {
	TIN     string `json:"tin" validate:"required,max=20"`
	IDType  string `json:"id_type" validate:"required,oneof=NRIC BRN PASSPORT ARMY"`
	IDValue string `json:"id_value" validate:"required,max=30"`
}

// SubmitDocumentsRequest wraps an already-built submission payload.
// The document shape is owned by the caller.
type SubmitDocumentsRequest struct {
	Documents []map[string]any `json:"documents" validate:"required,min=1,dive,required"`
}

// UpdateEnvironmentRequest switches the gateway between sandbox and production.
type UpdateEnvironmentRequest struct {
	Environment string `json:"environment" validate:"required,oneof=sandbox production"`
}
