package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/srgjo27/altair_ticket/internal/core/domain"
)

const callerKey = "caller"

// JWTAuth validates the HS256 bearer token issued by the auth provider and
// stores the resulting domain.Caller on the context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return respondError(c, domain.ErrNotAuthenticated)
			}
			caller, err := parseCaller(strings.TrimPrefix(auth, "Bearer "), secret)
			if err != nil {
				return respondError(c, err)
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

func parseCaller(raw, secret string) (domain.Caller, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return domain.Caller{}, fmt.Errorf("%w: invalid token", domain.ErrNotAuthenticated)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Caller{}, fmt.Errorf("%w: invalid claims", domain.ErrNotAuthenticated)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Caller{}, fmt.Errorf("%w: missing subject", domain.ErrNotAuthenticated)
	}
	roleClaim, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleClaim)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
	}
	return domain.Caller{UserID: sub, Role: role}, nil
}

// callerFrom returns the zero Caller on routes without JWTAuth, which every
// service rejects with ErrNotAuthenticated.
func callerFrom(c echo.Context) domain.Caller {
	caller, _ := c.Get(callerKey).(domain.Caller)
	return caller
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			}
			if caller := callerFrom(c); caller.Authenticated() {
				attrs = append(attrs, "user_id", caller.UserID)
			}
			if v.Error != nil {
				logger.Error("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}
