package handler // handler implements the HTTP endpoints of the marketplace API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// timeLayout is the timestamp format used in all response payloads.
const timeLayout = "2006-01-02 15:04:05"

// envelope is the uniform response shape used by every endpoint.  Success
// and failure both travel with HTTP 200; the code field carries the
// outcome (0 ok, 1 error).
type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func ok(c echo.Context, msg string, data any) error {
	return c.JSON(http.StatusOK, envelope{Code: 0, Msg: msg, Data: data})
}

func fail(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, envelope{Code: 1, Msg: msg})
}

// getUserID extracts the authenticated user ID stored by the TokenAuth
// middleware.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseFormID parses a required numeric form field such as book_id or
// order_id.
func parseFormID(c echo.Context, field string) (uint64, error) {
	id, err := strconv.ParseUint(c.FormValue(field), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("missing or invalid " + field)
	}
	return id, nil
}
