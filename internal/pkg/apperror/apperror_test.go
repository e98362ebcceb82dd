// internal/pkg/apperror/apperror_test.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindInsufficientStock, http.StatusBadRequest},
		{KindStateConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindPermission, http.StatusForbidden},
		{KindReferencedItem, http.StatusConflict},
		{KindGateway, http.StatusBadGateway},
		{KindUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "boom")))
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindInsufficientStock, "not enough stock")
	wrapped := fmt.Errorf("placing order: %w", inner)

	assert.True(t, IsKind(wrapped, KindInsufficientStock))
	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindGateway, "payment gateway unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "payment gateway unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}
