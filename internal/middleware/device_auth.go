package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const DeviceClaimsKey = "device_claims"

// DeviceClaims are embedded in the token handed to a terminal at enrollment.
type DeviceClaims struct {
	TerminalID string `json:"terminal_id"`
	TenantID   string `json:"tenant_id"`
	Serial     string `json:"serial"`
	jwt.RegisteredClaims
}

// DeviceAuth validates the Bearer device token on terminal-originated routes
// (heartbeat, events, locations). When the route carries an :id param the
// token must belong to that terminal, so a device cannot report for another.
func DeviceAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewEnvelope(c, http.StatusUnauthorized, "device token required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &DeviceClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, NewEnvelope(c, http.StatusUnauthorized, "invalid or expired device token"))
			return
		}

		if id := c.Param("id"); id != "" && id != claims.TerminalID {
			c.AbortWithStatusJSON(http.StatusForbidden, NewEnvelope(c, http.StatusForbidden, "token does not match terminal"))
			return
		}

		c.Set(DeviceClaimsKey, claims)
		c.Next()
	}
}

// GetDeviceClaims retrieves typed claims from the Gin context, nil when the
// request did not pass DeviceAuth.
func GetDeviceClaims(c *gin.Context) *DeviceClaims {
	v, ok := c.Get(DeviceClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*DeviceClaims)
	return claims
}
