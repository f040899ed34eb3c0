// Package jwtmw は管理系エンドポイント用のJWT発行と検証ミドルウェアを提供します。
package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cardlens/internal/api"
)

// ContextSubject はgin.Contextに保存するトークン主体のキーです。
const ContextSubject = "jwtSubject"

// ScopeRequired returns a Gin middleware that accepts only HS256 tokens signed with secret
// and carrying the given scope claim.
func ScopeRequired(secret, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーの取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. 署名鍵が未設定ならサーバー設定ミス
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		// 3. 署名の検証（HMACのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		// 4. スコープの確認
		claims, _ := token.Claims.(jwt.MapClaims)
		if got, _ := claims["scope"].(string); got != scope {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "insufficient scope"})
			return
		}
		if sub, err := claims.GetSubject(); err == nil {
			c.Set(ContextSubject, sub)
		}
		c.Next()
	}
}
