package handler

import (
	"einvoice-gateway/common"
	"einvoice-gateway/service"
	"errors"
	"net/http"
)

func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}

// gatewayError maps a gateway client failure to an HTTP error.
func gatewayError(err error, message string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return common.NewAppError(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrNoToken):
		return common.NewAppError(http.StatusServiceUnavailable, "Unable to obtain gateway token", err)
	case errors.Is(err, service.ErrTransport), errors.Is(err, service.ErrStatusUnavailable):
		return common.NewAppError(http.StatusBadGateway, message, err)
	}
	return common.NewAppError(http.StatusInternalServerError, message, err)
}
