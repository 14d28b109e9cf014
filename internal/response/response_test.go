package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, fn func(c echo.Context) error) map[string]any {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, fn(c))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSuccessEnvelope(t *testing.T) {
	out := record(t, func(c echo.Context) error {
		return Success(c, http.StatusCreated, map[string]int{"id": 7}, "Created")
	})
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Created", out["message"])
	assert.Equal(t, float64(7), out["data"].(map[string]any)["id"])
}

func TestOKOmitsMessage(t *testing.T) {
	out := record(t, func(c echo.Context) error { return OK(c, []int{}) })
	_, has := out["message"]
	assert.False(t, has)
}

func TestFailEnvelope(t *testing.T) {
	out := record(t, func(c echo.Context) error {
		return FailWithDetails(c, http.StatusBadRequest, "name is required", []string{"name is required"})
	})
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "name is required", out["error"])
	assert.Equal(t, float64(400), out["statusCode"])
	assert.Len(t, out["details"], 1)

	out = record(t, func(c echo.Context) error { return Fail(c, http.StatusNotFound, "Event not found") })
	_, has := out["details"]
	assert.False(t, has)
}
