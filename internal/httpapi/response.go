package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"libman/internal/domain"
	"libman/internal/log"
)

// Response is the envelope around every payload: a success variant carrying
// data, or an error variant carrying the failure detail.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

// respondErr maps the domain error kind to an HTTP status and renders the
// error variant. Storage failures are logged with their cause; the client
// only sees the generic detail.
func respondErr(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindStorage || kind == domain.KindUnknown {
		log.GetLogger(c.Request.Context()).WithError(err).Error("request failed")
	}
	c.AbortWithStatusJSON(statusFor(kind), Response{
		Status:  "error",
		Message: domain.MessageOf(err),
	})
}

// respondBadRequest renders binding failures; validation errors are
// flattened to per-field messages instead of the validator's struct dump.
func respondBadRequest(c *gin.Context, err error) {
	message := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed on the %q rule", fe.Field(), fe.Tag()))
		}
		message = strings.Join(details, "; ")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  "error",
		Message: message,
	})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindOutOfStock:
		return http.StatusConflict
	case domain.KindInvalidQuantity, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
