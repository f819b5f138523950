package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers signature failures, malformed payloads and
	// claim mismatches.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for structured tokens past their exp.
	ErrTokenExpired = errors.New("token expired")
)

// SubjectClaim is the sub object of a structured share token.
type SubjectClaim struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// LegacyClaims is the flat claim shape of pre-policy access tokens.
type LegacyClaims struct {
	ProjectID string
}

// StructuredClaims is the policy-era share token claim shape.
type StructuredClaims struct {
	Subject   SubjectClaim
	ExpiresAt int64
}

// ShareClaims is a decoded share token. Exactly one of Legacy or Structured
// is set; decoding tries the structured shape first and falls back to legacy
// when no sub claim is present.
type ShareClaims struct {
	Legacy     *LegacyClaims
	Structured *StructuredClaims
}

// VerifyShareToken checks the signature and decodes the claims of either
// token shape. Claim checks against a concrete project happen on the decoded
// value; see GrantsLegacyAccess and ValidForProject.
func VerifyShareToken(tokenString, secret string) (*ShareClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if sub, exists := claims["sub"]; exists {
		structured, err := decodeStructured(sub, claims)
		if err != nil {
			return nil, err
		}
		return &ShareClaims{Structured: structured}, nil
	}

	projectID, exists := claims["project_id"]
	if !exists {
		return nil, ErrInvalidToken
	}
	return &ShareClaims{Legacy: &LegacyClaims{ProjectID: claimString(projectID)}}, nil
}

func decodeStructured(sub interface{}, claims jwt.MapClaims) (*StructuredClaims, error) {
	subject, ok := sub.(map[string]interface{})
	if !ok {
		return nil, ErrInvalidToken
	}

	structured := &StructuredClaims{
		Subject: SubjectClaim{
			Type: claimString(subject["type"]),
			ID:   claimString(subject["id"]),
		},
	}

	// A structured token must carry an expiry. The signature check above
	// already rejected tokens past it.
	exp, exists := claims["exp"]
	if !exists {
		return nil, ErrInvalidToken
	}
	expValue, ok := exp.(float64)
	if !ok || expValue <= 0 {
		return nil, ErrInvalidToken
	}
	structured.ExpiresAt = int64(expValue)

	return structured, nil
}

// GrantsLegacyAccess reports whether the claims are a legacy token for the
// given project. Comparison is on the stringified id, matching the loose
// equality of the original tokens.
func (c *ShareClaims) GrantsLegacyAccess(projectID uint64) bool {
	return c.Legacy != nil && c.Legacy.ProjectID == strconv.FormatUint(projectID, 10)
}

// ValidForProject checks the structured claim invariants: sub.type must be
// "Project", sub.id must match the project id, and exp must be strictly in
// the future.
func (c *ShareClaims) ValidForProject(projectID uint64, now time.Time) error {
	if c.Structured == nil {
		return ErrInvalidToken
	}
	if c.Structured.Subject.Type != "Project" {
		return ErrInvalidToken
	}
	if c.Structured.Subject.ID != strconv.FormatUint(projectID, 10) {
		return ErrInvalidToken
	}
	if c.Structured.ExpiresAt <= now.Unix() {
		return ErrTokenExpired
	}
	return nil
}

// GenerateShareToken mints a structured share token for a project.
func GenerateShareToken(projectID uint64, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("empty signing secret")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": map[string]interface{}{
			"type": "Project",
			"id":   strconv.FormatUint(projectID, 10),
		},
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// claimString renders a claim value the way the legacy service compared
// them: numbers without a fraction print as integers.
func claimString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}
