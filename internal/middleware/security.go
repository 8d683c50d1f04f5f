package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	HSTS               bool
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	ContentPolicy      string
	// NoStore disables caching of responses, which carry patient balances.
	NoStore bool
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTS:               true,
		HSTSMaxAge:         31536000,
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "no-referrer",
		ContentPolicy:      "default-src 'none'; frame-ancestors 'none'",
		NoStore:            true,
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.HSTS {
			c.Header("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge))
		}
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		c.Header("Referrer-Policy", config.ReferrerPolicy)
		if config.ContentPolicy != "" {
			c.Header("Content-Security-Policy", config.ContentPolicy)
		}
		if config.NoStore {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}
