package authapp

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/domain/auth"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"time"
)

var (
	ErrAccessTokenInvalid = errors.New("invalid access token")
	ErrAccessTokenExpired = fmt.Errorf("%w: token expired", ErrAccessTokenInvalid)
)

type Authorizer struct {
	Cost             int
	Secret           string
	AccessTokenTTL   time.Duration
	AuthorizationTTL time.Duration
}

func (a *Authorizer) Authorize(u *auth.User, password string, dev auth.Device) (*auth.Authorization, error) {
	hashBytes, err := hex.DecodeString(u.PasswordHash)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(hashBytes, []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	return &auth.Authorization{
		ID:         uuid.NewString(),
		Secret:     a.generateSecret(),
		CreatedAt:  now,
		ValidUntil: now.Add(a.AuthorizationTTL),
		Device:     dev,
	}, nil
}

func (a *Authorizer) Hash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.Cost)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(hash)
}

func (a *Authorizer) generateSecret() string {
	var bytes [32]byte
	if n, err := rand.Read(bytes[:]); n != len(bytes) || err != nil {
		panic("failed to generate refresh secret")
	}

	return hex.EncodeToString(bytes[:])
}

func (a *Authorizer) GenerateAccessToken(u *auth.User, authorization *auth.Authorization) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": authorization.ID,
		"sub": u.UserID,
		"exp": now.Add(a.AccessTokenTTL).Unix(),
		"iat": now.Unix(),
	})
	return token.SignedString([]byte(a.Secret))
}

type AccessTokenData struct {
	Authorization string
	UserID        string
}

func (a *Authorizer) ValidateAccessToken(accessToken string) (*AccessTokenData, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(a.Secret), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrAccessTokenExpired
		}
		return nil, ErrAccessTokenInvalid
	}

	authID, ok := claims["jti"].(string)
	if !ok || authID == "" {
		return nil, ErrAccessTokenInvalid
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, ErrAccessTokenInvalid
	}

	return &AccessTokenData{
		Authorization: authID,
		UserID:        userID,
	}, nil
}
