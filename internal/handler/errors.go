package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ledger/internal/service/auth"
	"github.com/jwalitptl/clinic-ledger/internal/service/note"
	"github.com/jwalitptl/clinic-ledger/internal/service/patient"
	"github.com/jwalitptl/clinic-ledger/internal/service/payment"
	"github.com/jwalitptl/clinic-ledger/internal/service/statement"
	"github.com/jwalitptl/clinic-ledger/internal/service/treatment"
	apperrors "github.com/jwalitptl/clinic-ledger/pkg/errors"
)

var notFoundErrors = []error{
	patient.ErrPatientNotFound,
	treatment.ErrPatientNotFound,
	payment.ErrPatientNotFound,
	note.ErrPatientNotFound,
	note.ErrNoteNotFound,
	statement.ErrPatientNotFound,
}

// RespondError writes the HTTP form of err. Unexpected errors are logged and
// reported as 500 without their text.
func RespondError(c *gin.Context, err error) {
	var (
		conflict   *patient.ConflictError
		validation *apperrors.ValidationError
		bindErrs   validator.ValidationErrors
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		appErr     *apperrors.AppError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, NewErrorDetailsResponse("validation failed", validation.Fields))
	case errors.As(err, &bindErrs):
		fields := &apperrors.ValidationError{}
		for _, fe := range bindErrs {
			fields.Add(fe.Field(), bindMessage(fe))
		}
		c.JSON(http.StatusBadRequest, NewErrorDetailsResponse("validation failed", fields.Fields))
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, errMalformedBody):
		c.JSON(http.StatusBadRequest, NewErrorResponse("malformed request body: "+err.Error()))
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, NewErrorDetailsResponse(conflict.Error(), gin.H{
			"existing_id":   conflict.ExistingID,
			"existing_name": conflict.ExistingName,
		}))
	case errors.Is(err, patient.ErrMobileExists), errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, NewErrorResponse(err.Error()))
	case isNotFound(err):
		c.JSON(http.StatusNotFound, NewErrorResponse(err.Error()))
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(err.Error()))
	case errors.As(err, &appErr) && appErr.StatusCode() != http.StatusInternalServerError:
		if len(appErr.Details) == 0 {
			c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
			return
		}
		c.JSON(appErr.StatusCode(), NewErrorDetailsResponse(appErr.Message, appErr.Details))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
	}
}

var errMalformedBody = errors.New("invalid body")

// BindJSON decodes the body into req and runs binding validation.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var bindErrs validator.ValidationErrors
		if !errors.As(err, &bindErrs) {
			err = errors.Join(errMalformedBody, err)
		}
		RespondError(c, err)
		return false
	}
	return true
}

// IDParam parses a positive integer path parameter.
func IDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, apperrors.NewBadRequest("invalid "+name, err))
		return 0, false
	}
	return id, true
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "patient_type":
		return "must be New or Old"
	case "payment_mode":
		return "must be Cash, UPI or Card"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
