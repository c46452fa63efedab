package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable identifier for rate-limit and cache keys.
// Claims set by JWTAuth arrive as float64 (JSON numbers) or strings; guests
// map to "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "anon"
}
