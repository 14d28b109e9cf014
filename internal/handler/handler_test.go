package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/logging"
	"github.com/iliyamo/event-registration/internal/repository"
)

func newCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve.Messages
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerReq{Email: "", Password: "123"})
	assert.ElementsMatch(t, []string{
		"email is required",
		"password must be at least 6 characters",
	}, validationMessages(t, err))

	status := "archived"
	err = v.Validate(&updateEventReq{Status: &status})
	assert.Equal(t, []string{"status must be one of: upcoming, active, completed, cancelled"}, validationMessages(t, err))

	bad := "1:2:3"
	err = v.Validate(&registerForEventReq{CategoryID: 1, EstimatedFinishTime: &bad})
	assert.Equal(t, []string{"estimatedFinishTime must be in format HH:MM:SS"}, validationMessages(t, err))

	long := strings.Repeat("x", 501)
	err = v.Validate(&updateRegistrationReq{Notes: &long})
	assert.Equal(t, []string{"notes cannot exceed 500 characters"}, validationMessages(t, err))

	neg := -1.0
	err = v.Validate(&categoryReq{Distance: &neg})
	assert.Equal(t, []string{"distance must be greater than 0"}, validationMessages(t, err))

	ok := "01:45:00"
	assert.NoError(t, v.Validate(&registerForEventReq{CategoryID: 1, EstimatedFinishTime: &ok}))
}

func TestValidatorSkipsNilOptionalFields(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&updateEventReq{}))
	assert.NoError(t, v.Validate(&addressReq{}))
	assert.NoError(t, v.Validate(&profileReq{}))
}

func TestPathID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint64
		msg  string
	}{
		{"42", 42, ""},
		{"0", 0, "Event ID must be a positive number"},
		{"-3", 0, "Event ID must be a positive number"},
		{"abc", 0, "Event ID must be an integer"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			c, _ := newCtx("/")
			c.SetParamNames("id")
			c.SetParamValues(tc.raw)
			got, err := pathID(c, "id", "Event ID")
			if tc.msg == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			assert.Equal(t, []string{tc.msg}, validationMessages(t, err))
		})
	}
}

func TestPageQuery(t *testing.T) {
	c, _ := newCtx("/events")
	p, err := pageQuery(c)
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Page: 1, Limit: 10}, p)

	c, _ = newCtx("/events?page=3&limit=25")
	p, err = pageQuery(c)
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Page: 3, Limit: 25}, p)

	for target, msg := range map[string]string{
		"/events?limit=101": "limit cannot exceed 100",
		"/events?limit=0":   "limit must be a positive integer",
		"/events?page=zero": "page must be a positive integer",
	} {
		c, _ = newCtx(target)
		_, err = pageQuery(c)
		assert.Equal(t, []string{msg}, validationMessages(t, err), target)
	}
}

func TestQueryHelpers(t *testing.T) {
	c, _ := newCtx("/events?startDate=2026-05-01&endDate=2026-05-31T23:59:59Z&status=active&eventId=7")

	start, err := dateQuery(c, "startDate")
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.Equal(t, 2026, start.Year())

	end, err := dateQuery(c, "endDate")
	require.NoError(t, err)
	assert.Equal(t, 23, end.Hour())

	status, err := enumQuery(c, "status", eventStatuses...)
	require.NoError(t, err)
	assert.Equal(t, "active", status)

	id, err := uintQuery(c, "eventId")
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	c, _ = newCtx("/events?startDate=yesterday&status=paused")
	_, err = dateQuery(c, "startDate")
	assert.Equal(t, []string{"startDate must be a valid date"}, validationMessages(t, err))
	_, err = enumQuery(c, "status", "upcoming", "active")
	assert.Equal(t, []string{"status must be one of: upcoming, active"}, validationMessages(t, err))
}

func TestSettersIgnoreNil(t *testing.T) {
	street := "Main St"
	primary := false
	m := addressReq{Street: &street, IsPrimary: &primary}.values()
	assert.Equal(t, setters{"street": "Main St", "is_primary": false}, m)
}

func TestErrorHandler(t *testing.T) {
	h := ErrorHandler(logging.Discard())

	c, rec := newCtx("/x")
	h(invalid("name is required", "eventType is required"), c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"name is required","statusCode":400,"details":["name is required","eventType is required"]}`, rec.Body.String())

	c, rec = newCtx("/x")
	h(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Route not found","statusCode":404}`, rec.Body.String())

	c, rec = newCtx("/x")
	h(errors.New("db exploded"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}
