// Package handler contains the HTTP handlers of the API.
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"restapi/internal/delivery/api/response"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/query"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code != http.StatusBadRequest {
			return err
		}

		return errors.Wrap(domainerrors.ErrValidation.WithDetails(err.Error()), "bind request")
	}

	return c.Validate(req)
}

// paramID parses the :id path parameter.
func paramID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidation.WithFieldErrors(domainerrors.FieldError{
			Field:    "id",
			Location: domainerrors.LocationParams,
			Messages: []string{`"id" must be a valid id`},
		})
	}

	return id, nil
}

// listQuery builds the ListQuery of a list request.
func listQuery(c echo.Context, secureFields []string) *query.ListQuery {
	return query.Build(query.FromValues(c.QueryParams()), secureFields)
}

// listResponse renders {count, <key>: items} with the selection applied.
func listResponse[T any](c echo.Context, key string, count int64, items []T, sel query.Selection) error {
	projected, err := query.ProjectAll(items, sel)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, map[string]any{
		"count": count,
		key:     projected,
	})
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)

		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())

	return nil
}

// flexDate accepts RFC 3339 timestamps and plain dates.
type flexDate struct {
	time.Time
}

func (d *flexDate) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly, "2006/01/02"} {
		if t, err := time.Parse(layout, str); err == nil {
			d.Time = t

			return nil
		}
	}

	return errors.Errorf("invalid date %q", str)
}

// ptr returns nil for a zero date.
func (d *flexDate) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time

	return &t
}
