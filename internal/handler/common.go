package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/repository"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// bind decodes the JSON body into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return invalid("Invalid request body")
	}
	return c.Validate(dst)
}

// pathID parses a positive integer path parameter. label names the entity in
// the error, e.g. "Event ID must be a positive number".
func pathID(c echo.Context, name, label string) (uint64, error) {
	raw := strings.TrimSpace(c.Param(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		if _, ierr := strconv.ParseInt(raw, 10, 64); ierr == nil {
			return 0, invalid(label + " must be a positive number")
		}
		return 0, invalid(label + " must be an integer")
	}
	if n == 0 {
		return 0, invalid(label + " must be a positive number")
	}
	return n, nil
}

// pageQuery reads page and limit. Missing values default to 1 and 10; a
// limit above 100 or a non-positive value is rejected.
func pageQuery(c echo.Context) (repository.Page, error) {
	p := repository.Page{Page: 1, Limit: repository.DefaultLimit}
	if s := c.QueryParam("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, invalid("page must be a positive integer")
		}
		p.Page = n
	}
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, invalid("limit must be a positive integer")
		}
		if n > repository.MaxLimit {
			return p, invalid("limit cannot exceed 100")
		}
		p.Limit = n
	}
	return p, nil
}

// uintQuery reads an optional positive integer query parameter.
func uintQuery(c echo.Context, name string) (uint64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, invalid(name + " must be a positive integer")
	}
	return n, nil
}

// dateQuery reads an optional RFC 3339 timestamp or YYYY-MM-DD date.
func dateQuery(c echo.Context, name string) (*time.Time, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, invalid(name + " must be a valid date")
}

// enumQuery reads an optional query value restricted to allowed.
func enumQuery(c echo.Context, name string, allowed ...string) (string, error) {
	s := c.QueryParam(name)
	if s == "" {
		return "", nil
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", invalid(name + " must be one of: " + strings.Join(allowed, ", "))
}

// setters collects column updates from optional request fields. A nil
// pointer, whether the field was absent or null, leaves the column alone.
type setters map[string]any

func setStr(m setters, col string, v *string) {
	if v != nil {
		m[col] = *v
	}
}

func setTime(m setters, col string, v *time.Time) {
	if v != nil {
		m[col] = v.UTC()
	}
}

func setFloat(m setters, col string, v *float64) {
	if v != nil {
		m[col] = *v
	}
}

func setInt(m setters, col string, v *int) {
	if v != nil {
		m[col] = *v
	}
}

func setBool(m setters, col string, v *bool) {
	if v != nil {
		m[col] = *v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
