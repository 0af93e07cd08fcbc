package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims inclui os claims padrão JWT mais os campos próprios da aplicação.
// Role, StoreID e IsAdmin permitem decisões de middleware sem consultar a DB;
// a verificação de módulo usa o perfil completo carregado por request.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"user_id"`
	Role    string  `json:"role"` // "admin" | "encarregado" | "conferente"
	StoreID *string `json:"store_id"`
	IsAdmin bool    `json:"is_admin"`
}

// Generate gera um token JWT assinado com os dados do usuário.
func Generate(secret, userID, role string, storeID *string, isAdmin bool, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vazio")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:  userID,
		Role:    role,
		StoreID: storeID,
		IsAdmin: isAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida o token e devolve os claims da aplicação.
// Retorna erro se o token for inválido, expirado ou com assinatura incorreta.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vazio")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
