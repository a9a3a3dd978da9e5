package web

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const claimsKey = "dashboard_claims"

// Claims identify a dashboard session. An empty Guilds list grants every guild.
type Claims struct {
	Guilds []string `json:"guilds,omitempty"`
	jwt.RegisteredClaims
}

// CanManage reports whether the token may read and write guildID.
func (c *Claims) CanManage(guildID string) bool {
	return len(c.Guilds) == 0 || slices.Contains(c.Guilds, guildID)
}

// TokenManager signs and verifies HS256 dashboard tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns nil when secret is empty, which disables the protected API.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if secret == "" {
		return nil
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken issues a token for subject limited to guilds.
func (tm *TokenManager) GenerateToken(subject string, guilds ...string) (string, error) {
	now := tm.now()
	claims := Claims{
		Guilds: guilds,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// ParseToken verifies tokenString and returns its claims.
func (tm *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireToken reads a Bearer token from the Authorization header, or from the
// token query parameter for websocket clients.
func RequireToken(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tm == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "El panel no está configurado (DASHBOARD_SECRET)"})
			return
		}

		var token string
		if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token no proporcionado"})
			return
		}

		claims, err := tm.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireGuild rejects tokens that are not scoped to the :guildId parameter.
func requireGuild() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsOf(c).CanManage(c.Param("guildId")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sin acceso a este servidor"})
			return
		}
		c.Next()
	}
}

func claimsOf(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return &Claims{Guilds: []string{""}}
}
