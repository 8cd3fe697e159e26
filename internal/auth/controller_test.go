package auth

import (
	"errors"
	"net/http"
	"testing"

	"kerya/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		kind   apperrors.Kind
		status int
	}{
		{ErrUserAlreadyExists, apperrors.KindConflict, http.StatusConflict},
		{ErrInvalidCredentials, apperrors.KindUnauthenticated, http.StatusUnauthorized},
		{ErrInvalidToken, apperrors.KindUnauthenticated, http.StatusUnauthorized},
		{ErrTokenExpired, apperrors.KindUnauthenticated, http.StatusUnauthorized},
		{ErrUserNotFound, apperrors.KindNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		classified := classify(tt.err)
		assert.True(t, apperrors.Is(classified, tt.kind), "%v", tt.err)
		assert.Equal(t, tt.status, apperrors.HTTPStatus(classified), "%v", tt.err)
		assert.ErrorIs(t, classified, tt.err, "sentinel stays in the chain")
	}

	// Unclassified errors pass through and render as 500.
	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(plain))
}
