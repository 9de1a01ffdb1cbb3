package handler

import (
	"context"
	"einvoice-gateway/common"
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
	"net/http"

	"github.com/sirupsen/logrus"
)

// GatewayClient is the slice of service.GatewayService the handlers call.
type GatewayClient interface {
	ValidateTIN(ctx context.Context, tin, idType, idValue string) model.TINResult
	SubmitDocument(ctx context.Context, payload any) (*model.GatewayResponse, error)
	GetDocumentStatus(ctx context.Context, uuid string) (*model.GatewayResponse, error)
	CancelDocument(ctx context.Context, uuid string) (*model.CancelResult, error)
}

// GatewayHandler exposes the e-invoicing gateway operations.
type GatewayHandler struct {
	client GatewayClient
}

func NewGatewayHandler(client GatewayClient) *GatewayHandler {
	return &GatewayHandler{client: client}
}

// ValidateTIN godoc
// @Summary      Validate a taxpayer identification number
// @Description  Checks the TIN against the gateway with a freshly issued token. "error" results are returned with 502.
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.ValidateTINRequest true "TIN and identification"
// @Success      200  {object}  model.TINResult
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      502  {object}  model.TINResult
// @Router       /api/tin/validate [post]
func (h *GatewayHandler) ValidateTIN(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ValidateTINRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	result := h.client.ValidateTIN(r.Context(), req.TIN, req.IDType, req.IDValue)

	code := http.StatusOK
	if result.Status == model.TINError {
		code = http.StatusBadGateway
	}
	common.WriteJSON(w, code, result)
	return nil
}

// SubmitDocuments godoc
// @Summary      Submit documents
// @Description  Posts a document batch to the gateway. The gateway's status and body are returned verbatim in the envelope.
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.SubmitDocumentsRequest true "Documents to submit"
// @Success      200  {object}  model.GatewayResponse
// @Failure      400  {object}  common.AppError
// @Failure      502  {object}  common.AppError
// @Failure      503  {object}  common.AppError "No gateway token available"
// @Router       /api/documents [post]
func (h *GatewayHandler) SubmitDocuments(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SubmitDocumentsRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"service":   r.Context().Value(ServiceKey),
		"documents": len(req.Documents),
	}).Info("Document submission request received")

	resp, err := h.client.SubmitDocument(r.Context(), req)
	if err != nil {
		return gatewayError(err, "Could not submit documents")
	}

	common.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// GetDocumentStatus godoc
// @Summary      Get document status
// @Tags         gateway
// @Produce      json
// @Security     BearerAuth
// @Param        uuid path string true "Document UUID"
// @Success      200  {object}  model.GatewayResponse
// @Failure      400  {object}  common.AppError
// @Failure      502  {object}  common.AppError "Status unavailable"
// @Router       /api/documents/{uuid} [get]
func (h *GatewayHandler) GetDocumentStatus(w http.ResponseWriter, r *http.Request) *common.AppError {
	resp, err := h.client.GetDocumentStatus(r.Context(), r.PathValue("uuid"))
	if err != nil {
		return gatewayError(err, "Document status unavailable")
	}

	common.WriteJSON(w, http.StatusOK, resp)
	return nil
}

// CancelDocument godoc
// @Summary      Cancel a document
// @Tags         gateway
// @Produce      json
// @Security     BearerAuth
// @Param        uuid path string true "Document UUID"
// @Success      200  {object}  model.CancelResult
// @Failure      400  {object}  common.AppError
// @Failure      502  {object}  common.AppError
// @Failure      503  {object}  common.AppError "No gateway token available"
// @Router       /api/documents/{uuid}/cancel [put]
func (h *GatewayHandler) CancelDocument(w http.ResponseWriter, r *http.Request) *common.AppError {
	uuid := r.PathValue("uuid")
	logger.Log.WithFields(logrus.Fields{
		"service": r.Context().Value(ServiceKey),
		"uuid":    uuid,
	}).Info("Document cancellation request received")

	result, err := h.client.CancelDocument(r.Context(), uuid)
	if err != nil {
		return gatewayError(err, "Could not cancel document")
	}

	common.WriteJSON(w, http.StatusOK, result)
	return nil
}
