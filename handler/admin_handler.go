package handler

import (
	"context"
	"einvoice-gateway/common"
	"einvoice-gateway/logger"
	"einvoice-gateway/model"
	"einvoice-gateway/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// TokenManager is the slice of service.TokenService the admin routes use.
type TokenManager interface {
	GetToken(ctx context.Context, forceNew bool) (string, error)
	ClearTokens(ctx context.Context) error
}

// EnvironmentSwitcher is the slice of service.SettingsService the admin routes use.
type EnvironmentSwitcher interface {
	SetEnvironment(ctx context.Context, environment string) error
	APIHost(ctx context.Context) string
}

// LogReader is the shared diagnostic trail. *logger.Sink satisfies it.
type LogReader interface {
	Recent(ctx context.Context, n int64) ([]string, error)
	Clear(ctx context.Context) error
}

// AdminHandler holds the operational endpoints: token, environment and logs.
type AdminHandler struct {
	tokens   TokenManager
	settings EnvironmentSwitcher
	logs     LogReader
}

func NewAdminHandler(tokens TokenManager, settings EnvironmentSwitcher, logs LogReader) *AdminHandler {
	return &AdminHandler{tokens: tokens, settings: settings, logs: logs}
}

// RefreshToken godoc
// @Summary      Force a gateway token refresh
// @Description  Requests a new OAuth token under the shared refresh lock. The token itself is never returned.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool
// @Failure      503  {object}  common.AppError
// @Router       /api/token/refresh [post]
func (h *AdminHandler) RefreshToken(w http.ResponseWriter, r *http.Request) *common.AppError {
	if _, err := h.tokens.GetToken(r.Context(), true); err != nil {
		return gatewayError(err, "Could not refresh gateway token")
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"refreshed": true})
	return nil
}

// ClearTokens godoc
// @Summary      Drop cached gateway tokens
// @Tags         admin
// @Security     BearerAuth
// @Success      204
// @Failure      500  {object}  common.AppError
// @Router       /api/token [delete]
func (h *AdminHandler) ClearTokens(w http.ResponseWriter, r *http.Request) *common.AppError {
	if err := h.tokens.ClearTokens(r.Context()); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not clear tokens", err)
	}
	logger.Log.WithField("service", r.Context().Value(ServiceKey)).Warn("Gateway tokens cleared")
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// UpdateEnvironment godoc
// @Summary      Switch gateway environment
// @Description  Switches between sandbox and production. Cached tokens are cleared when the environment changes.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.UpdateEnvironmentRequest true "Target environment"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /api/settings/environment [put]
func (h *AdminHandler) UpdateEnvironment(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.UpdateEnvironmentRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	if err := h.settings.SetEnvironment(r.Context(), req.Environment); err != nil {
		if errors.Is(err, service.ErrInvalidEnvironment) {
			return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not switch environment", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"service":     r.Context().Value(ServiceKey),
		"environment": req.Environment,
	}).Info("Gateway environment updated")

	common.WriteJSON(w, http.StatusOK, map[string]string{
		"environment": req.Environment,
		"api_host":    h.settings.APIHost(r.Context()),
	})
	return nil
}

// ListLogs godoc
// @Summary      Recent gateway diagnostics
// @Description  Returns the newest diagnostic lines, oldest first.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of lines (default and maximum 300)"
// @Success      200  {object}  map[string][]string
// @Failure      400  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /api/logs [get]
func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) *common.AppError {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return common.NewAppError(http.StatusBadRequest, "limit must be a non-negative integer", nil)
		}
		limit = n
	}

	lines, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not read logs", err)
	}
	if lines == nil {
		lines = []string{}
	}
	common.WriteJSON(w, http.StatusOK, map[string][]string{"lines": lines})
	return nil
}

// ClearLogs godoc
// @Summary      Clear gateway diagnostics
// @Tags         admin
// @Security     BearerAuth
// @Success      204
// @Failure      500  {object}  common.AppError
// @Router       /api/logs [delete]
func (h *AdminHandler) ClearLogs(w http.ResponseWriter, r *http.Request) *common.AppError {
	if err := h.logs.Clear(r.Context()); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not clear logs", err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
