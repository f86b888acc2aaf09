package strata_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/strata-io/strata-client/pkg/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := &strata.APIError{
		Code:    404,
		Status:  strata.StatusNotFound,
		Message: "cluster not found",
	}

	assert.Equal(t, "NOT_FOUND: cluster not found (code: 404)", err.Error())
}

func TestResponseError_Error(t *testing.T) {
	t.Run("with embedded error", func(t *testing.T) {
		err := &strata.ResponseError{
			Error_: &strata.APIError{
				Code:    403,
				Status:  strata.StatusPermissionDenied,
				Message: "missing strata.write scope",
			},
		}

		assert.Contains(t, err.Error(), "PERMISSION_DENIED")
		assert.Contains(t, err.Error(), "missing strata.write scope")
	})

	t.Run("without embedded error", func(t *testing.T) {
		err := &strata.ResponseError{}
		assert.Equal(t, "unknown error", err.Error())
	})
}

func TestResponseError_Unwrap(t *testing.T) {
	apiErr := &strata.APIError{Code: 404, Status: strata.StatusNotFound}
	respErr := &strata.ResponseError{Error_: apiErr}

	// errors.As reaches the embedded APIError through Unwrap
	assert.True(t, strata.IsNotFound(respErr))

	empty := &strata.ResponseError{}
	require.NoError(t, empty.Unwrap())
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "APIError not found",
			err:      &strata.APIError{Code: strata.ErrorCodeNotFound},
			expected: true,
		},
		{
			name:     "APIError other code",
			err:      &strata.APIError{Code: strata.ErrorCodeInternal},
			expected: false,
		},
		{
			name: "ResponseError not found",
			err: &strata.ResponseError{
				Error_: &strata.APIError{Code: strata.ErrorCodeNotFound},
			},
			expected: true,
		},
		{
			name:     "wrapped APIError",
			err:      fmt.Errorf("getting cluster: %w", &strata.APIError{Code: strata.ErrorCodeNotFound}),
			expected: true,
		},
		{
			name:     "plain error",
			err:      strata.ErrSomeError,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, strata.IsNotFound(testCase.err))
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, strata.IsUnauthorized(&strata.APIError{Code: strata.ErrorCodeUnauthenticated}))
	assert.True(t, strata.IsUnauthorized(fmt.Errorf("request: %w", strata.ErrUnauthorized)))
	assert.False(t, strata.IsUnauthorized(&strata.APIError{Code: strata.ErrorCodeNotFound}))
	assert.False(t, strata.IsUnauthorized(strata.ErrSomeError))
}

func TestIsForbidden(t *testing.T) {
	assert.True(t, strata.IsForbidden(&strata.APIError{Code: strata.ErrorCodePermissionDenied}))
	assert.False(t, strata.IsForbidden(&strata.APIError{Code: strata.ErrorCodeUnauthenticated}))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, strata.IsConflict(&strata.APIError{Code: strata.ErrorCodeAlreadyExists}))
	assert.False(t, strata.IsConflict(&strata.APIError{Code: strata.ErrorCodeNotFound}))
}

func TestParseResponseError(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		data := []byte(`{"error":{"code":404,"status":"NOT_FOUND","message":"no such template"}}`)

		respErr, err := strata.ParseResponseError(data)
		require.NoError(t, err)
		require.NotNil(t, respErr.Error_)
		assert.Equal(t, 404, respErr.Error_.Code)
		assert.Equal(t, "NOT_FOUND", respErr.Error_.Status)
		assert.Equal(t, "no such template", respErr.Error_.Message)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := strata.ParseResponseError([]byte("<html>bad gateway</html>"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal response error")
	})
}

func TestResponseError_JSONMarshaling(t *testing.T) {
	original := &strata.ResponseError{
		Error_: &strata.APIError{
			Code:    429,
			Status:  strata.StatusResourceExhausted,
			Message: "quota exceeded",
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := strata.ParseResponseError(data)
	require.NoError(t, err)
	assert.Equal(t, original.Error_.Code, decoded.Error_.Code)
	assert.Equal(t, original.Error_.Message, decoded.Error_.Message)
}

func TestErrorConstants(t *testing.T) {
	assert.Equal(t, strata.ErrorCodeNotFound, strata.ErrNotFound.Code)
	assert.Equal(t, strata.StatusNotFound, strata.ErrNotFound.Status)
	assert.Equal(t, strata.ErrorCodeUnauthenticated, strata.ErrUnauthorized.Code)
	assert.Equal(t, strata.ErrorCodePermissionDenied, strata.ErrForbidden.Code)
	assert.Equal(t, strata.ErrorCodeResourceExhausted, strata.ErrTooManyRequests.Code)
}
