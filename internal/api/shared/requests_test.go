package shared

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type selfValidating struct {
	called bool
}

func (s *selfValidating) Validate() error {
	s.called = true
	return nil
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	var body loginBody
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "a@b.co", body.Email)

	bad := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))
	assert.Error(t, DecodeJSON(bad, &body))
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(&loginBody{Email: "not-an-email"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	assert.NoError(t, ValidateRequest(&loginBody{Email: "a@b.co", Password: "x"}))

	sv := &selfValidating{}
	assert.NoError(t, ValidateRequest(sv))
	assert.True(t, sv.called)
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/bootcamps?select=name,housing&averageCost[lte]=10000&page=2&page=3", nil)
	got := QueryParams(r)

	assert.Equal(t, map[string]string{
		"select":           "name,housing",
		"averageCost[lte]": "10000",
		"page":             "2",
	}, got)
}
