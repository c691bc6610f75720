package auth

import (
	"errors"
	"idea-review-platform/internal/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func secret() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

func GenerateAccessToken(userID uint64, tokenVersion uint64) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       userID,
		"token_version": tokenVersion,
		"exp":           time.Now().Add(15 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func GenerateRefreshToken(userID uint64, tokenVersion uint64) (string, error) {
	claims := jwt.MapClaims{
		"user_id":       userID,
		"token_version": tokenVersion,
		"exp":           time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !jwtToken.Valid {
		return nil, errors.New("invalid token")
	}
	return jwtToken, nil
}

// GetDataFromToken extracts the user id and token version claims.
func GetDataFromToken(token *jwt.Token) (uint64, uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errors.New("invalid claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, 0, errors.New("user_id claim missing")
	}
	tokenVersion, ok := claims["token_version"].(float64)
	if !ok {
		return 0, 0, errors.New("token_version claim missing")
	}

	return uint64(userID), uint64(tokenVersion), nil
}
