package handler

import (
	"context"
	"einvoice-gateway/model"
	"einvoice-gateway/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockGatewayClient struct {
	mock.Mock
}

func (m *mockGatewayClient) ValidateTIN(ctx context.Context, tin, idType, idValue string) model.TINResult {
	args := m.Called(tin, idType, idValue)
	return args.Get(0).(model.TINResult)
}

func (m *mockGatewayClient) SubmitDocument(ctx context.Context, payload any) (*model.GatewayResponse, error) {
	args := m.Called(payload)
	if resp := args.Get(0); resp != nil {
		return resp.(*model.GatewayResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGatewayClient) GetDocumentStatus(ctx context.Context, uuid string) (*model.GatewayResponse, error) {
	args := m.Called(uuid)
	if resp := args.Get(0); resp != nil {
		return resp.(*model.GatewayResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGatewayClient) CancelDocument(ctx context.Context, uuid string) (*model.CancelResult, error) {
	args := m.Called(uuid)
	if res := args.Get(0); res != nil {
		return res.(*model.CancelResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGatewayHandler_ValidateTIN(t *testing.T) {
	client := &mockGatewayClient{}
	client.On("ValidateTIN", "C1", "BRN", "2019").
		Return(model.TINResult{Status: model.TINError, Message: "Forbidden - insufficient permissions"}).Once()
	h := NewGatewayHandler(client)

	req := httptest.NewRequest("POST", "/api/tin/validate", strings.NewReader(`{"tin":"C1","id_type":"BRN","id_value":"2019"}`))
	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(h.ValidateTIN)(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"status":"error","message":"Forbidden - insufficient permissions"}`, rr.Body.String())
	client.AssertExpectations(t)
}

func TestGatewayHandler_ValidateTIN_BadBody(t *testing.T) {
	client := &mockGatewayClient{}
	h := NewGatewayHandler(client)

	req := httptest.NewRequest("POST", "/api/tin/validate", strings.NewReader(`{"tin":`))
	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(h.ValidateTIN)(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	client.AssertNotCalled(t, "ValidateTIN", mock.Anything, mock.Anything, mock.Anything)
}

func TestGatewayHandler_SubmitDocuments_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"no token", fmt.Errorf("%w: token endpoint returned HTTP 401", service.ErrNoToken), http.StatusServiceUnavailable},
		{"transport", fmt.Errorf("%w: i/o timeout", service.ErrTransport), http.StatusBadGateway},
		{"invalid input", fmt.Errorf("%w: cannot encode payload", service.ErrInvalidInput), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockGatewayClient{}
			client.On("SubmitDocument", mock.Anything).Return(nil, tt.err).Once()
			h := NewGatewayHandler(client)

			req := httptest.NewRequest("POST", "/api/documents", strings.NewReader(`{"documents":[{"format":"JSON"}]}`))
			rr := httptest.NewRecorder()
			ErrorHandlingMiddleware(h.SubmitDocuments)(rr, req)

			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

func TestGatewayHandler_SubmitDocuments_PassesGatewayStatusThrough(t *testing.T) {
	client := &mockGatewayClient{}
	client.On("SubmitDocument", mock.MatchedBy(func(p any) bool {
		req, ok := p.(model.SubmitDocumentsRequest)
		return ok && len(req.Documents) == 1
	})).Return(&model.GatewayResponse{Code: http.StatusUnprocessableEntity, Body: "rejected"}, nil).Once()
	h := NewGatewayHandler(client)

	req := httptest.NewRequest("POST", "/api/documents", strings.NewReader(`{"documents":[{"format":"JSON"}]}`))
	rr := httptest.NewRecorder()
	ErrorHandlingMiddleware(h.SubmitDocuments)(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"code":422,"body":"rejected","data":null}`, rr.Body.String())
	client.AssertExpectations(t)
}

func TestGatewayHandler_CancelDocument(t *testing.T) {
	client := &mockGatewayClient{}
	client.On("CancelDocument", "DOC-1").Return(&model.CancelResult{Code: 400, Body: "too late", Success: false}, nil).Once()
	h := NewGatewayHandler(client)

	mux := http.NewServeMux()
	mux.Handle("PUT /api/documents/{uuid}/cancel", ErrorHandlingMiddleware(h.CancelDocument))

	req := httptest.NewRequest("PUT", "/api/documents/DOC-1/cancel", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"code":400,"body":"too late","success":false}`, rr.Body.String())
}
