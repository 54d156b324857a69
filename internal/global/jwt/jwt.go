package jwt

import (
	"time"

	"project-checkin-system/config"

	"github.com/golang-jwt/jwt/v5"
)

// Payload 写入令牌的用户信息
type Payload struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	RoleID   int    `json:"role_id"`
}

type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// CreateToken 生成 JWT 令牌，过期时间取自配置
func CreateToken(payload Payload) string {
	cfg := config.Get()
	claims := Claims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.JWT.AccessExpire) * time.Second)),
			Issuer:    "project-checkin-system",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWT.AccessSecret))
	if err != nil {
		return ""
	}
	return signed
}

// ParseToken 解析并校验令牌
func ParseToken(tokenString string) (*Claims, bool) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(config.Get().JWT.AccessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, false
	}
	return claims, true
}
