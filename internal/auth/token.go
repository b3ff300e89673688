package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

const defaultIssuer = "tableside"

// Claims is the payload of staff and owner session tokens.
type Claims struct {
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// ActorResolver turns an inbound request into an actor. It is the only
// contract the order core has with session handling.
type ActorResolver interface {
	Resolve(r *http.Request) (Actor, error)
}

// TokenVerifier issues and verifies HS256 session tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenVerifier(secret []byte, issuer string) *TokenVerifier {
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &TokenVerifier{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

func (v *TokenVerifier) Issue(actor Actor, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("token secret not configured")
	}
	if actor.Role != RoleOwner && actor.Role != RoleStaff {
		return "", fmt.Errorf("unsupported role %q", actor.Role)
	}
	if actor.Role == RoleStaff && actor.BranchID == uuid.Nil {
		return "", errors.New("staff tokens require a branch")
	}

	now := v.now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   actor.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if actor.BranchID != uuid.Nil {
		claims.BranchID = actor.BranchID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func (v *TokenVerifier) Verify(tokenStr string) (Actor, error) {
	if len(v.secret) == 0 {
		return Actor{}, errors.New("token secret not configured")
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithTimeFunc(v.now))
	if err != nil || !tkn.Valid {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	actor := Actor{
		UserID: claims.Subject,
		Role:   Role(claims.Role),
	}
	if claims.BranchID != "" {
		branchID, err := uuid.Parse(claims.BranchID)
		if err != nil {
			return Actor{}, fmt.Errorf("%w: bad branch claim", ErrInvalidToken)
		}
		actor.BranchID = branchID
	}

	switch actor.Role {
	case RoleOwner:
	case RoleStaff:
		if actor.BranchID == uuid.Nil {
			return Actor{}, fmt.Errorf("%w: staff token without branch", ErrInvalidToken)
		}
	default:
		return Actor{}, fmt.Errorf("%w: unknown role", ErrInvalidToken)
	}

	return actor, nil
}

// Resolve reads the bearer token from the Authorization header, falling back
// to the access_token query parameter for EventSource clients that cannot
// set headers.
func (v *TokenVerifier) Resolve(r *http.Request) (Actor, error) {
	token := bearerToken(r)
	if token == "" {
		return Actor{}, ErrMissingToken
	}
	return v.Verify(token)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}
