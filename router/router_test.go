// file: router/router_test.go

package router_test

import (
	"context"
	"einvoice-gateway/handler"
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
	"einvoice-gateway/router"
	"einvoice-gateway/service"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

var authService = service.NewAuthService(testSecret)

func TestMain(m *testing.M) {
	logger.Init()
	logger.Log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// --- Test Doubles ---

type fakeGateway struct {
	lastUUID string
}

func (f *fakeGateway) ValidateTIN(_ context.Context, tin, _, _ string) model.TINResult {
	if tin == "C404" {
		return model.TINResult{Status: model.TINInvalid, Message: "TIN not found or mismatched"}
	}
	return model.TINResult{Status: model.TINValid, Message: "TIN validated successfully"}
}

func (f *fakeGateway) SubmitDocument(_ context.Context, _ any) (*model.GatewayResponse, error) {
	return &model.GatewayResponse{Code: http.StatusAccepted, Body: `{"submissionUid":"S-1"}`, Data: map[string]any{"submissionUid": "S-1"}}, nil
}

func (f *fakeGateway) GetDocumentStatus(_ context.Context, uuid string) (*model.GatewayResponse, error) {
	f.lastUUID = uuid
	if uuid == "missing" {
		return nil, fmt.Errorf("%w: HTTP 404", service.ErrStatusUnavailable)
	}
	return &model.GatewayResponse{Code: http.StatusOK, Body: `{}`}, nil
}

func (f *fakeGateway) CancelDocument(_ context.Context, uuid string) (*model.CancelResult, error) {
	f.lastUUID = uuid
	return &model.CancelResult{Code: http.StatusOK, Body: `{}`, Success: true}, nil
}

type fakeTokens struct{ cleared bool }

func (f *fakeTokens) GetToken(context.Context, bool) (string, error) { return "secret-token", nil }
func (f *fakeTokens) ClearTokens(context.Context) error             { f.cleared = true; return nil }

type fakeSettings struct{ env string }

func (f *fakeSettings) SetEnvironment(_ context.Context, env string) error {
	f.env = env
	return nil
}

func (f *fakeSettings) APIHost(context.Context) string { return service.HostForEnvironment(f.env) }

type fakeLogs struct{ lines []string }

func (f *fakeLogs) Recent(context.Context, int64) ([]string, error) { return f.lines, nil }
func (f *fakeLogs) Clear(context.Context) error                    { f.lines = nil; return nil }

// --- Test Helper Functions ---

type testRouter struct {
	http.Handler
	gateway  *fakeGateway
	tokens   *fakeTokens
	settings *fakeSettings
	logs     *fakeLogs
}

func newTestRouter() *testRouter {
	tr := &testRouter{
		gateway:  &fakeGateway{},
		tokens:   &fakeTokens{},
		settings: &fakeSettings{env: service.EnvironmentSandbox},
		logs:     &fakeLogs{lines: []string{"09:30:00 | Using cached OAuth token"}},
	}
	tr.Handler = router.NewRouter(router.Deps{
		Gateway:  handler.NewGatewayHandler(tr.gateway),
		Admin:    handler.NewAdminHandler(tr.tokens, tr.settings, tr.logs),
		Verifier: authService,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "# metrics")
		}),
	})
	return tr
}

func serviceToken(t *testing.T) string {
	t.Helper()
	token, err := authService.IssueServiceToken("billing-worker", time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Test Suites ---

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestRouter(), "GET", "/health", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"Gateway client is healthy and running"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestMetricsRoute(t *testing.T) {
	rr := do(t, newTestRouter(), "GET", "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())
}

func TestAPIRequiresServiceToken(t *testing.T) {
	tr := newTestRouter()

	t.Run("missing header", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/token/refresh", "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("foreign secret", func(t *testing.T) {
		foreign, err := service.NewAuthService("other").IssueServiceToken("intruder", time.Hour)
		require.NoError(t, err)

		rr := do(t, tr, "POST", "/api/token/refresh", "", foreign)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestValidateTINRoute(t *testing.T) {
	tr := newTestRouter()
	token := serviceToken(t)

	t.Run("valid", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/tin/validate", `{"tin":"C1","id_type":"BRN","id_value":"2019"}`, token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"valid","message":"TIN validated successfully"}`, rr.Body.String())
	})

	t.Run("invalid id type", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/tin/validate", `{"tin":"C1","id_type":"LICENSE","id_value":"2019"}`, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDocumentRoutes(t *testing.T) {
	tr := newTestRouter()
	token := serviceToken(t)

	t.Run("submit", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/documents", `{"documents":[{"format":"JSON","document":"e30="}]}`, token)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp model.GatewayResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusAccepted, resp.Code)
	})

	t.Run("submit without documents", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/documents", `{"documents":[]}`, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("status", func(t *testing.T) {
		rr := do(t, tr, "GET", "/api/documents/DOC-1", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "DOC-1", tr.gateway.lastUUID)
	})

	t.Run("status unavailable", func(t *testing.T) {
		rr := do(t, tr, "GET", "/api/documents/missing", "", token)
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		rr := do(t, tr, "PUT", "/api/documents/DOC-2/cancel", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "DOC-2", tr.gateway.lastUUID)
		assert.JSONEq(t, `{"code":200,"body":"{}","success":true}`, rr.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		rr := do(t, tr, "DELETE", "/api/documents/DOC-2", "", token)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestAdminRoutes(t *testing.T) {
	tr := newTestRouter()
	token := serviceToken(t)

	t.Run("refresh never returns the token", func(t *testing.T) {
		rr := do(t, tr, "POST", "/api/token/refresh", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret-token")
	})

	t.Run("clear tokens", func(t *testing.T) {
		rr := do(t, tr, "DELETE", "/api/token", "", token)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, tr.tokens.cleared)
	})

	t.Run("switch environment", func(t *testing.T) {
		rr := do(t, tr, "PUT", "/api/settings/environment", `{"environment":"production"}`, token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"environment":"production","api_host":"https://api.myinvois.hasil.gov.my"}`, rr.Body.String())
	})

	t.Run("logs", func(t *testing.T) {
		rr := do(t, tr, "GET", "/api/logs?limit=10", "", token)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"lines":["09:30:00 | Using cached OAuth token"]}`, rr.Body.String())

		rr = do(t, tr, "DELETE", "/api/logs", "", token)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = do(t, tr, "GET", "/api/logs", "", token)
		assert.JSONEq(t, `{"lines":[]}`, rr.Body.String())
	})
}
