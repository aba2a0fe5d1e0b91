package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnicart/fulfillment/internal/domain/model"
)

var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMalformed       = errors.New("token malformed")
	ErrSignatureInvalid     = errors.New("token signature invalid")
	ErrAlgorithmUnsupported = errors.New("unsupported signing algorithm")

	errUnexpectedSigningAlg  = fmt.Errorf("%w: expected HS256", ErrAlgorithmUnsupported)
	errWrongTokenType        = fmt.Errorf("%w: wrong token type", ErrTokenMalformed)
	errMissingRequiredClaims = fmt.Errorf("%w: missing required claims", ErrTokenMalformed)
)

// Type distinguishes access tokens from refresh tokens. The two are signed
// with distinct secrets so one can never be replayed as the other.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Claims are the verified contents of a bearer token. Access tokens embed the
// profile id and role set so downstream services authorize without a
// secondary lookup.
type Claims struct {
	ProfileID int64        `json:"userId,omitempty"`
	Roles     []model.Role `json:"roles,omitempty"`
	TokenType Type         `json:"type"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric auth-service subject identifier.
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errMissingRequiredClaims
	}
	return id, nil
}

// Verifier checks a bearer string against the required token type.
type Verifier interface {
	Verify(bearer string, typ Type) (*Claims, error)
}

// Issuer mints signed tokens. Only the auth service issues in production;
// the order/payment services carry an issuer solely for integration tests.
type Issuer interface {
	IssueAccess(subjectID, profileID int64, roles []model.Role) (string, error)
	IssueRefresh(subjectID int64) (string, error)
}

// Options tune token lifetimes.
type Options struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// JWTStrategy implements issuing and verification with HMAC-SHA256.
type JWTStrategy struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTStrategy builds a strategy for the given service-specific secrets.
func NewJWTStrategy(issuer, accessSecret, refreshSecret string, opts Options) *JWTStrategy {
	accessTTL := opts.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := opts.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &JWTStrategy{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess mints an access token embedding profile id and roles.
func (s *JWTStrategy) IssueAccess(subjectID, profileID int64, roles []model.Role) (string, error) {
	claims := &Claims{
		ProfileID: profileID,
		Roles:     roles,
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// IssueRefresh mints a refresh token carrying only the subject.
func (s *JWTStrategy) IssueRefresh(subjectID int64) (string, error) {
	claims := &Claims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
}

// Verify parses and validates a bearer string as the required token type.
func (s *JWTStrategy) Verify(bearer string, typ Type) (*Claims, error) {
	if bearer == "" {
		return nil, ErrUnauthenticated
	}

	secret := s.accessSecret
	if typ == TypeRefresh {
		secret = s.refreshSecret
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningAlg
		}
		return secret, nil
	})
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.TokenType != typ {
		return nil, errWrongTokenType
	}
	if typ == TypeAccess && (claims.ProfileID == 0 || len(claims.Roles) == 0) {
		return nil, errMissingRequiredClaims
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, ErrAlgorithmUnsupported):
		return errUnexpectedSigningAlg
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
