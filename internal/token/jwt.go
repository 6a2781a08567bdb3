package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// Claims represents session token claims issued by the auth collaborator.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// Verifier validates session tokens with symmetric HMAC. The runtime never
// issues tokens; authentication is owned by an external collaborator.
type Verifier struct {
	secretKey string
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: secretKey}
}

// Session resolves a bearer token into a session. Any invalid, expired or
// foreign-signed token yields the anonymous session rather than an error: a
// bad token must never block a public route.
func (v *Verifier) Session(tokenString string) model.Session {
	if tokenString == "" {
		return model.Anonymous()
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.secretKey), nil
	})
	if err != nil || !parsed.Valid || claims.UserID == uuid.Nil {
		return model.Anonymous()
	}

	return model.Session{
		User: &model.User{ID: claims.UserID, Email: claims.Email},
		Role: claims.Role,
	}
}

// Issue signs a session token. Exposed for local development and tests; the
// production issuer lives with the auth collaborator.
func (v *Verifier) Issue(userID uuid.UUID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	})

	tokenString, err := token.SignedString([]byte(v.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}
