package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"social-listening-gateway/internal/ratelimit"
	"social-listening-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxOperator     = "operator"
	anonymous       = "anonymous"
)

// RequestID tags every request with an id, reusing the caller's when sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request handled",
			"requestId", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"operator", c.GetString(ctxOperator),
			"duration", time.Since(start),
		)
	}
}

// AuthMiddleware requires a Bearer operator token signed with secret. Browser
// websocket clients may pass it as the access_token query parameter instead.
// An empty secret disables the check.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(ctxOperator, anonymous)
			c.Next()
			return
		}

		token := c.Query("access_token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			var ok bool
			token, ok = strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
				return
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		operator, err := utils.ParseJWTToken(strings.TrimSpace(token), []byte(secret))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxOperator, operator)
		c.Next()
	}
}

// RateLimitMiddleware limits trigger actions per operator and action. Limiter
// errors let the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := c.GetString(ctxOperator)
		if operator == "" {
			operator = anonymous
		}

		d, err := limiter.Allow(c.Request.Context(), operator+":"+action)
		if err != nil {
			slog.Warn("Rate limiter unavailable", "error", err, "operator", operator)
			c.Next()
			return
		}
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests, please wait before starting another job",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
