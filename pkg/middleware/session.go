package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims はセッショントークンのクレーム（ペイロード）を表す。
// トークン自体はユーザー情報を持たず、サーバー側セッションへの参照のみを運ぶ。
type SessionClaims struct {
	jwt.RegisteredClaims
	// SessionID はサーバー側に保存されたセッションの一意識別子。
	SessionID string `json:"session_id"`
}

// Identity はセッションから解決された認証済みユーザーを表す。
type Identity struct {
	// UserID はユーザーの一意識別子。
	UserID string
	// Username はユーザー名。
	Username string
}

// SessionResolver はセッションIDを認証済みユーザーに解決する。
// セッションが存在しない・期限切れ・ユーザーが消えている場合は
// エラーではなくfalseを返す（正常系の否定結果）。
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (Identity, bool, error)
}

// tokenIssuer はセッショントークンのIssuerクレーム値。
const tokenIssuer = "todo-api"

// SignSessionToken はセッションIDを署名付きトークンに包む。
// ログイン成功時にセッション確立と同時に呼び出す。
func SignSessionToken(secret, sessionID string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("セッショントークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseSessionToken はトークンを検証してセッションIDを取り出す。
// 署名不一致・期限切れ・形式不正はすべてエラーになる。
func ParseSessionToken(secret, tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("セッショントークンの検証に失敗: %w", err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("セッショントークンが無効です")
	}
	return claims.SessionID, nil
}

// SessionAuth はセッショントークンを検証するGinミドルウェアを返す。
// トークンの署名検証後、サーバー側セッションストアへの照会で
// ログアウト済み・期限切れのセッションを弾く。解決に成功した場合、
// コンテキストに "user_id" と "username" を設定する。
// 失敗時はハンドラを実行せず401で中断する。
func SessionAuth(secret string, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		sessionID, err := ParseSessionToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		identity, ok, err := resolver.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "セッションの確認に失敗しました",
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "セッションが無効です",
			})
			return
		}

		c.Set("user_id", identity.UserID)
		c.Set("username", identity.Username)
		c.Next()
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// SessionAuthミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUsername はGinコンテキストからユーザー名を取得する。
func GetUsername(c *gin.Context) string {
	username, _ := c.Get("username")
	if name, ok := username.(string); ok {
		return name
	}
	return ""
}
