package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/selfassess/internal/assessment"
	"github.com/abhisek/selfassess/internal/proxy"
	"github.com/abhisek/selfassess/internal/report"
	"github.com/abhisek/selfassess/internal/service"
	"github.com/abhisek/selfassess/internal/storage"
)

// statusFor maps a domain error to an HTTP status.
func statusFor(err error) int {
	var (
		notFound  *assessment.NotFoundError
		duplicate *assessment.DuplicateIDError
		forbidden *storage.ForbiddenError
		invalid   *proxy.ValidationError
		verrs     validator.ValidationErrors
		badDoc    *service.InvalidQuestionnaireError
		nullData  *report.NullDataError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &nullData):
		return http.StatusNotFound
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &verrs), errors.As(err, &badDoc),
		errors.Is(err, assessment.ErrMissingID):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// abort records err and writes the mapped status. Internal errors are not
// echoed to the caller.
func abort(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// bindError wraps a request decoding failure as a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return &proxy.ValidationError{Field: "body", Reason: "invalid request body", Err: err}
}
