package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrThrottled},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusBadGateway, ErrServerError},
		{http.StatusTeapot, nil},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStatus(tt.code))
		})
	}
}

func TestAPIError_ErrorsIs(t *testing.T) {
	err := fmt.Errorf("listing products: %w", &APIError{
		StatusCode: http.StatusNotFound,
		Data:       []byte(`{"message":"missing"}`),
		Err:        ErrNotFound,
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.JSONEq(t, `{"message":"missing"}`, string(apiErr.Data))
}

func TestAPIError_Message(t *testing.T) {
	withID := &APIError{StatusCode: 500, RequestID: "abc", Data: []byte("boom")}
	assert.Equal(t, "api: HTTP 500 (request-id: abc): boom", withID.Error())

	withoutID := &APIError{StatusCode: 500, Data: []byte("boom")}
	assert.Equal(t, "api: HTTP 500: boom", withoutID.Error())
}

func TestStatusCode_NonAPIError(t *testing.T) {
	assert.Zero(t, StatusCode(errors.New("plain")))
	assert.Zero(t, StatusCode(nil))
}
