package middleware // middleware provides reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/utils"
)

// TokenAuth returns an Echo middleware that validates a Bearer access token
// and injects the user ID into the request context under "user_id".  A
// valid token whose remaining lifetime has dropped below the refresh window
// is transparently reissued; the fresh token travels back in the
// X-New-Token response header so clients can replace their copy.
//
// Every failure short-circuits with the uniform envelope
// {"code":1,"msg":"token error"}; protected endpoints never leak a
// different authentication error shape.
func TokenAuth(secret string, ttlMin, refreshWindowMin int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusOK, echo.Map{"code": 1, "msg": "token error"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, fresh, err := utils.VerifyAndRefresh(secret, raw, ttlMin, refreshWindowMin)
			if err != nil {
				return c.JSON(http.StatusOK, echo.Map{"code": 1, "msg": "token error"})
			}
			if fresh != "" {
				c.Response().Header().Set("X-New-Token", fresh)
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}
