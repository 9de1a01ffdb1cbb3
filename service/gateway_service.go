package service

import (
	"bytes"
	"context"
	"einvoice-gateway/metrics"
	"einvoice-gateway/model"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	opValidateTIN = "validate_tin"
	opSubmit      = "submit_document"
	opStatus      = "get_document_status"
	opCancel      = "cancel_document"
)

var cancelBody = model.CancelRequest{Status: "cancelled", Reason: "Cancelled by merchant"}

type GatewayOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// GatewayService performs the e-invoicing gateway operations. Each call gets
// its bearer token from the TokenProvider and is retried once with a
// forced-fresh token when the gateway answers 401.
type GatewayService struct {
	tokens   TokenProvider
	settings SettingsProvider
	client   HTTPDoer
	sink     Diagnostics
	metrics  *metrics.Metrics
	limiter  *rate.Limiter
	timeout  time.Duration
}

func NewGatewayService(tokens TokenProvider, settings SettingsProvider, client HTTPDoer, sink Diagnostics, m *metrics.Metrics, opts GatewayOptions) *GatewayService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	if sink == nil {
		sink = nopDiagnostics{}
	}
	return &GatewayService{
		tokens:   tokens,
		settings: settings,
		client:   client,
		sink:     sink,
		metrics:  m,
		limiter:  limiter,
		timeout:  opts.Timeout,
	}
}

type callResult struct {
	code int
	body string
}

// ValidateTIN checks a taxpayer identification number against the gateway.
// It always forces a fresh token since the result gates a regulatory check.
func (s *GatewayService) ValidateTIN(ctx context.Context, tin, idType, idValue string) model.TINResult {
	if strings.TrimSpace(tin) == "" || strings.TrimSpace(idType) == "" || strings.TrimSpace(idValue) == "" {
		return model.TINResult{Status: model.TINError, Message: "TIN, ID type and ID value are required"}
	}

	token, err := s.tokens.GetToken(ctx, true)
	if err != nil {
		return model.TINResult{Status: model.TINError, Message: "Unable to obtain gateway token"}
	}

	query := url.Values{"idType": {idType}, "idValue": {idValue}}
	endpoint := s.endpoint(ctx, KeyValidateTINURL, "/api/v1.0/taxpayer/validate/", tin) + "?" + query.Encode()
	s.sink.Log(ctx, fmt.Sprintf("Validating TIN | URL: %s | TIN: %s | ID Type: %s | ID Value: %s", endpoint, tin, idType, idValue))

	send := func(token string) (callResult, error) {
		return s.call(ctx, opValidateTIN, http.MethodGet, endpoint, token, nil)
	}

	res, err := send(token)
	if err != nil {
		s.sink.Log(ctx, "TIN validation error: "+err.Error())
		return model.TINResult{Status: model.TINError, Message: err.Error()}
	}
	s.sink.Log(ctx, fmt.Sprintf("TIN validation response | Code: %d | Body: %s", res.code, res.body))

	if res.code == http.StatusUnauthorized {
		retried, ok, err := s.retryUnauthorized(ctx, opValidateTIN, "TIN validation", send)
		if ok && err != nil {
			s.sink.Log(ctx, "TIN validation error: "+err.Error())
			return model.TINResult{Status: model.TINError, Message: err.Error()}
		}
		if ok {
			res = retried
			s.sink.Log(ctx, fmt.Sprintf("Retry TIN validation response | Code: %d | Body: %s", res.code, res.body))
		}
	}

	return s.classifyTIN(ctx, res, tin, idType, idValue)
}

func (s *GatewayService) classifyTIN(ctx context.Context, res callResult, tin, idType, idValue string) model.TINResult {
	switch res.code {
	case http.StatusOK:
		s.sink.Log(ctx, fmt.Sprintf("TIN validated successfully | TIN:%s ID_TYPE:%s ID_Value:%s", tin, idType, idValue))
		return model.TINResult{Status: model.TINValid, Message: "TIN validated successfully"}
	case http.StatusNotFound:
		s.sink.Log(ctx, fmt.Sprintf("TIN not found or mismatched | TIN:%s ID_TYPE:%s ID_Value:%s", tin, idType, idValue))
		return model.TINResult{Status: model.TINInvalid, Message: "TIN not found or mismatched"}
	case http.StatusUnauthorized:
		s.sink.Log(ctx, "TIN validation unauthorized (401) - token may be invalid")
		return model.TINResult{Status: model.TINError, Message: "Unauthorized - token may be invalid or expired"}
	case http.StatusForbidden:
		s.sink.Log(ctx, "TIN validation forbidden (403)")
		return model.TINResult{Status: model.TINError, Message: "Forbidden - insufficient permissions"}
	}
	s.sink.Log(ctx, fmt.Sprintf("TIN validation unexpected response | Code: %d | Body: %s", res.code, res.body))
	return model.TINResult{Status: model.TINError, Message: fmt.Sprintf("Unexpected gateway response (HTTP %d)", res.code)}
}

// SubmitDocument posts payload as JSON. Non-2xx responses are returned as
// data, not errors; the caller inspects Code.
func (s *GatewayService) SubmitDocument(ctx context.Context, payload any) (*model.GatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode payload: %w", ErrInvalidInput, err)
	}

	token, err := s.tokens.GetToken(ctx, false)
	if err != nil {
		return nil, err
	}

	endpoint := s.endpoint(ctx, KeySubmitDocURL, "/api/v1.0/documentsubmissions/")
	send := func(token string) (callResult, error) {
		return s.call(ctx, opSubmit, http.MethodPost, endpoint, token, body)
	}

	res, err := send(token)
	if err != nil {
		s.sink.Log(ctx, err.Error())
		return nil, err
	}
	s.sink.Log(ctx, fmt.Sprintf("Submit HTTP %d", res.code))
	s.sink.Log(ctx, res.body)

	if res.code == http.StatusUnauthorized {
		retried, ok, err := s.retryUnauthorized(ctx, opSubmit, "Submit invoice", send)
		if ok && err != nil {
			s.sink.Log(ctx, err.Error())
			return nil, err
		}
		if ok {
			res = retried
			s.sink.Log(ctx, fmt.Sprintf("Retry Submit HTTP %d", res.code))
			s.sink.Log(ctx, res.body)
		}
	}

	return toResponse(res), nil
}

// GetDocumentStatus fetches document details. Anything but a final HTTP 200
// yields ErrStatusUnavailable.
func (s *GatewayService) GetDocumentStatus(ctx context.Context, uuid string) (*model.GatewayResponse, error) {
	if strings.TrimSpace(uuid) == "" {
		return nil, fmt.Errorf("%w: %w: document uuid is required", ErrStatusUnavailable, ErrInvalidInput)
	}

	token, err := s.tokens.GetToken(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusUnavailable, err)
	}

	endpoint := s.endpoint(ctx, KeyGetDocURL, "/api/v1.0/documents/", uuid, "details")
	s.sink.Log(ctx, "Fetching status for UUID "+uuid)

	send := func(token string) (callResult, error) {
		return s.call(ctx, opStatus, http.MethodGet, endpoint, token, nil)
	}

	res, err := send(token)
	if err != nil {
		s.sink.Log(ctx, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrStatusUnavailable, err)
	}
	s.sink.Log(ctx, fmt.Sprintf("Status HTTP %d", res.code))
	s.sink.Log(ctx, res.body)

	if res.code == http.StatusUnauthorized {
		retried, ok, err := s.retryUnauthorized(ctx, opStatus, "Get document status", send)
		if ok && err != nil {
			s.sink.Log(ctx, err.Error())
			return nil, fmt.Errorf("%w: %w", ErrStatusUnavailable, err)
		}
		if ok {
			res = retried
			s.sink.Log(ctx, fmt.Sprintf("Retry Status HTTP %d", res.code))
			s.sink.Log(ctx, res.body)
		}
	}

	if res.code != http.StatusOK {
		s.sink.Log(ctx, "Status sync failed")
		return nil, fmt.Errorf("%w: HTTP %d", ErrStatusUnavailable, res.code)
	}
	return toResponse(res), nil
}

// CancelDocument asks the gateway to cancel a document.
func (s *GatewayService) CancelDocument(ctx context.Context, uuid string) (*model.CancelResult, error) {
	if strings.TrimSpace(uuid) == "" {
		return nil, fmt.Errorf("%w: document uuid is required", ErrInvalidInput)
	}

	token, err := s.tokens.GetToken(ctx, false)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(cancelBody)
	if err != nil {
		return nil, err
	}
	endpoint := s.endpoint(ctx, KeyCancelDocURL, "/api/v1.0/documents/state/", uuid, "state")
	send := func(token string) (callResult, error) {
		return s.call(ctx, opCancel, http.MethodPut, endpoint, token, body)
	}

	res, err := send(token)
	if err != nil {
		s.sink.Log(ctx, err.Error())
		return nil, err
	}
	s.sink.Log(ctx, fmt.Sprintf("Cancel HTTP %d", res.code))
	s.sink.Log(ctx, res.body)

	if res.code == http.StatusUnauthorized {
		retried, ok, err := s.retryUnauthorized(ctx, opCancel, "Cancel document", send)
		if ok && err != nil {
			s.sink.Log(ctx, err.Error())
			return nil, err
		}
		if ok {
			res = retried
			s.sink.Log(ctx, fmt.Sprintf("Retry Cancel HTTP %d", res.code))
			s.sink.Log(ctx, res.body)
		}
	}

	return &model.CancelResult{
		Code:    res.code,
		Body:    res.body,
		Success: res.code >= 200 && res.code < 300,
	}, nil
}

// retryUnauthorized re-sends a request exactly once with a forced-fresh
// token. ok is false when no fresh token could be obtained, in which case the
// caller keeps its original response.
func (s *GatewayService) retryUnauthorized(ctx context.Context, op, label string, send func(token string) (callResult, error)) (callResult, bool, error) {
	s.sink.Log(ctx, label+" unauthorized (401) - reauthenticating and retrying")

	token, err := s.tokens.GetToken(ctx, true)
	if err != nil {
		s.sink.Log(ctx, label+": could not obtain a fresh token for retry")
		return callResult{}, false, nil
	}

	s.metrics.UnauthorizedRetry(op)
	res, err := send(token)
	return res, true, err
}

func (s *GatewayService) endpoint(ctx context.Context, key, def string, segments ...string) string {
	return joinURL(s.settings.APIHost(ctx), s.settings.Get(ctx, key, def), segments...)
}

// call performs one bounded HTTP exchange. Transport failures, including
// timeouts, wrap ErrTransport; any HTTP status is a result.
func (s *GatewayService) call(ctx context.Context, op, method, endpoint, token string, body []byte) (callResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return callResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return callResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.GatewayCall(op, 0)
		return callResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.GatewayCall(op, 0)
		return callResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	s.metrics.GatewayCall(op, resp.StatusCode)
	return callResult{code: resp.StatusCode, body: string(raw)}, nil
}

func toResponse(res callResult) *model.GatewayResponse {
	out := &model.GatewayResponse{Code: res.code, Body: res.body}
	var data any
	if err := json.Unmarshal([]byte(res.body), &data); err == nil {
		out.Data = data
	}
	return out
}
