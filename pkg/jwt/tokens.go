package jwt

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims defines JWT payload. Tokens issued by the user service carry UserID
// and Username; CI tokens minted by the gateway add TaskID.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
	TaskID   string `json:"taskId,omitempty"`
	jwtlib.RegisteredClaims
}

// GenerateToken issues a signed JWT with provided secret and ttl. A zero ttl
// produces a token without an expiry.
func GenerateToken(userID, taskID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		TaskID: taskID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:   "ws-flare",
			IssuedAt: jwtlib.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwtlib.NewNumericDate(now.Add(ttl))
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse validates and extracts claims from token.
func Parse(token string, secret string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}
