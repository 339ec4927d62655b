package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("invalid token claims")

// Claims is the typed view of an access token.
type Claims struct {
	UserID    string
	Role      user.Role
	CompanyID string
	TokenID   string
	ExpiresAt time.Time
}

type Service interface {
	GenerateAccessToken(userID string, role user.Role, companyID *string) (token string, claims Claims, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth  *jwtauth.JWTAuth
	expiration time.Duration
	now        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, expiration time.Duration) Service {
	return &JWTService{
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		expiration: expiration,
		now:        time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID string, role user.Role, companyID *string) (string, Claims, error) {
	tokenID, err := uuid.NewV7()
	if err != nil {
		return "", Claims{}, fmt.Errorf("generate token id: %w", err)
	}

	now := j.now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   tokenID.String(),
		ExpiresAt: now.Add(j.expiration).Truncate(time.Second),
	}
	if companyID != nil {
		claims.CompanyID = *companyID
	}

	raw := map[string]interface{}{
		jwt.SubjectKey: userID,
		jwt.JwtIDKey:   claims.TokenID,
		"user_id":      userID,
		"role":         string(role),
		"company_id":   claims.CompanyID,
		"type":         tokenTypeAccess,
	}
	jwtauth.SetIssuedAt(raw, now)
	jwtauth.SetExpiry(raw, claims.ExpiresAt)

	_, tokenString, err := j.tokenAuth.Encode(raw)
	if err != nil {
		return "", Claims{}, err
	}
	return tokenString, claims, nil
}

// ParseClaims validates an access token's claim set as produced by
// jwtauth.FromContext and converts it to Claims.
func ParseClaims(token jwt.Token, raw map[string]interface{}) (Claims, error) {
	if token == nil {
		return Claims{}, ErrInvalidClaims
	}
	if tokenType, _ := raw["type"].(string); tokenType != tokenTypeAccess {
		return Claims{}, ErrInvalidClaims
	}

	userID, _ := raw["user_id"].(string)
	if userID == "" {
		userID = token.Subject()
	}
	role := user.Role(stringClaim(raw, "role"))
	if userID == "" || !role.IsValid() {
		return Claims{}, ErrInvalidClaims
	}

	return Claims{
		UserID:    userID,
		Role:      role,
		CompanyID: stringClaim(raw, "company_id"),
		TokenID:   token.JwtID(),
		ExpiresAt: token.Expiration(),
	}, nil
}

func stringClaim(raw map[string]interface{}, key string) string {
	v, _ := raw[key].(string)
	return v
}
