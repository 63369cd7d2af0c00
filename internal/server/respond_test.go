package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failmarket/pkg/types"
)

func testService() *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Service{logger: logger}
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{types.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("name is required: %w", types.ErrValidation), http.StatusBadRequest},
		{types.ErrUserNotFound, http.StatusNotFound},
		{types.ErrProjectNotFound, http.StatusNotFound},
		{types.ErrCategoryNotFound, http.StatusNotFound},
		{types.ErrHelpfulNotFound, http.StatusNotFound},
		{types.ErrAlreadyMarked, http.StatusConflict},
		{types.ErrAlreadyPurchased, http.StatusConflict},
		{types.ErrDuplicateCategory, http.StatusConflict},
		{types.ErrInsufficientFunds, http.StatusPaymentRequired},
		{types.ErrForbidden, http.StatusForbidden},
		{errors.New("pool exhausted"), http.StatusInternalServerError},
	}

	svc := testService()

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			rec := httptest.NewRecorder()
			svc.respondDomainError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var envelope errorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantStatus, envelope.Code)
		})
	}

	t.Run("internal details stay out of the body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		svc.respondDomainError(rec, errors.New("dial tcp 10.0.0.5:5432 refused"))

		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})
}

func TestPathID(t *testing.T) {
	newRequest := func(value string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/projects/"+value, nil)
		r.SetPathValue("projectID", value)
		return r
	}

	id, err := pathID(newRequest("7"), "projectID")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := pathID(newRequest(raw), "projectID")
		assert.ErrorIs(t, err, types.ErrValidation, "value %q must be rejected", raw)
	}
}

func TestRespondEnvelope(t *testing.T) {
	svc := testService()

	rec := httptest.NewRecorder()
	svc.respond(rec, http.StatusCreated, "project created", map[string]int{"project_id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var envelope successEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, http.StatusCreated, envelope.Code)
	assert.Equal(t, "project created", envelope.Message)
}
