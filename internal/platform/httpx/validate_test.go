package httpx

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	ClientID  int64    `json:"client_id" validate:"required"`
	TaxAmount *float64 `json:"tax_amount" validate:"required"`
}

func TestValidateNamesFieldByJSONTag(t *testing.T) {
	tax := 1.0
	err := Validate(samplePayload{TaxAmount: &tax})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Missing required field: client_id")

	err = Validate(samplePayload{ClientID: 1})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Missing required field: tax_amount")
}

func TestValidatePassesCompletePayload(t *testing.T) {
	tax := 1.0
	assert.NoError(t, Validate(samplePayload{ClientID: 1, TaxAmount: &tax}))
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ErrNotFound, 404},
		{fmt.Errorf("%w: Missing required field: total_amount", ErrValidation), 400},
		{ErrConflict, 409},
		{ErrUnauthorized, 401},
		{fmt.Errorf("pgx: connection refused"), 500},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.code, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"error"`)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("pgx: connection refused"))
	assert.NotContains(t, rr.Body.String(), "pgx")
	assert.Contains(t, rr.Body.String(), "internal server error")
}
