package middleware

// identity.go holds helpers shared by the rate limit and cache
// middleware.  Rate limit keys include the caller identity so staff
// sessions do not share buckets with anonymous QR traffic.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// callerID extracts a stable identifier for the requester.  Staff
// requests carry the JWT subject that JWTAuth stored under "staff_id";
// anonymous requests (public menu, QR orders) map to "guest".
func callerID(c echo.Context) string {
	v := c.Get("staff_id")
	if v == nil {
		return "guest"
	}
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		// MapClaims decodes numeric subjects as float64.
		return fmt.Sprintf("%.0f", id)
	case uint64:
		return fmt.Sprintf("%d", id)
	}
	return "guest"
}
