package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorStatusCode(t *testing.T) {
	cause := errors.New("strconv: invalid syntax")
	err := NewBadRequest("invalid id", cause)

	assert.Equal(t, http.StatusBadRequest, err.StatusCode())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "invalid id: strconv: invalid syntax", err.Error())

	assert.Equal(t, http.StatusInternalServerError, (&AppError{Code: ErrInternal}).StatusCode())
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("name", "is required")
	verr.Add("mode", "must be Cash, UPI or Card")
	err := verr.OrNil()
	assert.Error(t, err)
	assert.Equal(t, "validation failed: name: is required; mode: must be Cash, UPI or Card", err.Error())
	assert.Equal(t, http.StatusBadRequest, verr.StatusCode())
}
