package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/labstack/echo/v4"
)

const payerIDContextKey = "payer_id"

// PayerAuth authenticates the payer session on client-facing endpoints via a
// Bearer token. Provider-facing endpoints never use it: providers prove
// themselves with their own signatures.
func PayerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			authHeader := ctx.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "missing bearer token"})
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid token"})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "invalid token claims"})
			}

			// JSON numbers arrive as float64.
			rawID, ok := claims["uid"].(float64)
			if !ok || rawID <= 0 {
				return ctx.JSON(http.StatusUnauthorized, &types.ErrorResponse{Error: "token carries no payer id"})
			}

			ctx.Set(payerIDContextKey, uint64(rawID))
			return next(ctx)
		}
	}
}

// PayerID returns the authenticated payer id, or 0 when the request did not
// pass through PayerAuth.
func PayerID(ctx echo.Context) uint64 {
	id, _ := ctx.Get(payerIDContextKey).(uint64)
	return id
}
