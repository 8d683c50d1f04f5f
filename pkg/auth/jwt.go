package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTService interface {
	GenerateAccessToken(user *model.User) (string, time.Time, error)
	ValidateToken(token string) (*model.TokenClaims, error)
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type hmacService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewJWTService signs HS256 access tokens with secret.
func NewJWTService(secret, issuer string, expiry time.Duration) JWTService {
	return &hmacService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (s *hmacService) GenerateAccessToken(user *model.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *hmacService) ValidateToken(tokenString string) (*model.TokenClaims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &model.TokenClaims{UserID: id, Username: c.Username}, nil
}
