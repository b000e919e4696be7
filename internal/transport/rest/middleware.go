package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic/internal/domain"
)

const (
	authorizationHeader = "Authorization"
	requestIDHeader     = "X-Request-ID"
	principalCtx        = "principal"
	requestIDCtx        = "request_id"
)

// RateLimiter is satisfied by pkg/redis.Client.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (h *Handler) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(requestIDCtx, id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

func (h *Handler) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()

		logger := h.logger.With(
			zap.String("request_id", c.GetString(requestIDCtx)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
		)

		if status >= 500 {
			logger.Error("server error")
		} else if status >= 400 {
			logger.Warn("client error")
		} else {
			logger.Info("request processed")
		}
	}
}

func (h *Handler) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			if errors.Is(err.Err, domain.ErrUpstreamFailure) {
				h.logger.Error("request error", zap.String("request_id", c.GetString(requestIDCtx)), zap.Error(err.Err))
				continue
			}
			h.logger.Debug("request error", zap.String("request_id", c.GetString(requestIDCtx)), zap.Error(err.Err))
		}
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(h.config.HTTP.CORSOrigins))
	for _, o := range h.config.HTTP.CORSOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		if origin != "" && (allowed[origin] || (allowAll && c.Request.Header.Get(authorizationHeader) != "")) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Content-Length, Accept, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware accepts "Bearer <token>" in the header, or ?token= for
// websocket upgrades where browsers cannot set headers.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}

		principal, err := h.verifier.Verify(token)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(principalCtx, principal)

		c.Next()
	}
}

func (h *Handler) staffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := getPrincipal(c)
		if err != nil {
			unauthorizedResponse(c)
			return
		}

		if !principal.IsStaff() {
			forbiddenResponse(c)
			return
		}

		c.Next()
	}
}

// rateLimitMiddleware lets requests through when no limiter is configured or
// the limiter itself fails.
func (h *Handler) rateLimitMiddleware(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if principal, err := getPrincipal(c); err == nil {
			subject = fmt.Sprintf("user:%d", principal.UserID)
		}

		allowed, err := h.limiter.CheckRateLimit(c.Request.Context(), scope+":"+subject, limit, window)
		if err != nil {
			h.logger.Warn("ошибка проверки лимита запросов", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			errorResponse(c, http.StatusTooManyRequests, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		if token := c.Query("token"); token != "" && c.IsWebsocket() {
			return token, nil
		}
		return "", errors.New("пустой заголовок авторизации")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
		return "", errors.New("неверный формат заголовка авторизации")
	}

	return headerParts[1], nil
}

func getPrincipal(c *gin.Context) (domain.AuthenticatedPrincipal, error) {
	value, exists := c.Get(principalCtx)
	if !exists {
		return domain.AuthenticatedPrincipal{}, errors.New("пользователь не авторизован")
	}

	principal, ok := value.(domain.AuthenticatedPrincipal)
	if !ok {
		return domain.AuthenticatedPrincipal{}, errors.New("некорректные данные пользователя")
	}

	return principal, nil
}
