package jwt

import (
	"errors"
	"fmt"
	"time"

	"mein-essen/domain"

	"github.com/golang-jwt/jwt/v4"
)

const RoleOwner = "owner"

type (
	JWTService interface {
		GenerateToken(subject string, role string, ttl time.Duration) (string, error)
		ValidateToken(token string) (*jwt.Token, error)
		GetSubjectByToken(token string) (string, string, error)
		Enabled() bool
	}

	jwtClaim struct {
		OwnerID string `json:"owner_id"`
		Role    string `json:"role"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		now       func() time.Time
	}
)

// NewJWTService returns a service that signs with secretKey. An empty key
// disables token checks altogether.
func NewJWTService(secretKey string) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    "MEIN-ESSEN",
		now:       time.Now,
	}
}

func (j *jwtService) Enabled() bool {
	return j.secretKey != ""
}

// GenerateToken signs a token for subject; ttl <= 0 means no expiry.
func (j *jwtService) GenerateToken(subject string, role string, ttl time.Duration) (string, error) {
	if !j.Enabled() {
		return "", errors.New("JWT_SECRET is not set")
	}

	registered := jwt.RegisteredClaims{
		Issuer:   j.issuer,
		IssuedAt: jwt.NewNumericDate(j.now()),
	}
	if ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(j.now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaim{subject, role, registered})
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateToken(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtClaim{}, j.parseToken)
}

func (j *jwtService) GetSubjectByToken(token string) (string, string, error) {
	t_Token, err := j.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", domain.ErrTokenExpired
		}
		return "", "", domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return "", "", domain.ErrTokenInvalid
	}

	claims := t_Token.Claims.(*jwtClaim)
	if claims.Issuer != j.issuer {
		return "", "", domain.ErrTokenInvalid
	}
	return claims.OwnerID, claims.Role, nil
}
