package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/homekitchen/internal/config"
)

// Claims 会话令牌载荷：openid 是稳定身份，nickName 仅展示用
type Claims struct {
	OpenID   string `json:"openid"`
	NickName string `json:"nickName"`
	jwt.RegisteredClaims
}

// GenerateToken 生成 JWT
func GenerateToken(cfg *config.JWTConfig, openid, nickName string) (string, error) {
	now := time.Now()
	claims := Claims{
		OpenID:   openid,
		NickName: nickName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析 JWT
func ParseToken(cfg *config.JWTConfig, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
