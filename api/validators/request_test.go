package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/BanSimplified567/isladelcafe2025-sub000/pkg/errors"
)

type drinkRequest struct {
	Size  string `json:"size" validate:"required,oneof=Small Medium Large"`
	Lines []line `json:"lines" validate:"required,min=1,dive"`
}

type line struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyReportsJSONPaths(t *testing.T) {
	var dest drinkRequest
	err := DecodeJSONBody(post(`{"size":"Venti","lines":[{"quantity":0}]}`), &dest)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]any{
		"size":              "must be one of [Small Medium Large]",
		"lines[0].quantity": "is required",
	}, typed.Details())
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"size":"Small","lines":[{"quantity":1}],"tip":5}`,
		"wrong type":    `{"size":3}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest drinkRequest
			err := DecodeJSONBody(post(body), &dest)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	var dest drinkRequest
	require.NoError(t, DecodeJSONBody(post(`{"size":"Small","lines":[{"quantity":2}]}`), &dest))
	assert.Equal(t, 2, dest.Lines[0].Quantity)
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500&bad=x", nil)

	n, err := ParseQueryInt(r, "page", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ParseQueryInt(r, "missing", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	_, err = ParseQueryInt(r, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryInt(r, "bad", 20, 1, 100)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("orderId", value)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id := uuid.New()
	got, err := ParseUUIDParam(withParam(id.String()), "orderId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "42"} {
		_, err := ParseUUIDParam(withParam(bad), "orderId")
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), bad)
	}
}
