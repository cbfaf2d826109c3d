package httpservice

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func errorStatus(err error) (int, string) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, ""
	}

	switch domainErr.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest, domainErr.Code
	case domain.KindAuthorization:
		return http.StatusForbidden, domainErr.Code
	case domain.KindState:
		return http.StatusConflict, domainErr.Code
	case domain.KindArithmetic:
		return http.StatusUnprocessableEntity, domainErr.Code
	case domain.KindFunds:
		return http.StatusPaymentRequired, domainErr.Code
	case domain.KindNotFound:
		return http.StatusNotFound, domainErr.Code
	default:
		return http.StatusInternalServerError, domainErr.Code
	}
}

func fail(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField(requestIdKey, c.GetString(requestIdKey)).Error(
			"request failed",
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error(), Code: code})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
