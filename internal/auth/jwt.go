package auth

import (
	"fmt"
	"time"

	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realm identifies the JWT authentication realm.
type Realm string

// RealmAdmin is the only realm issued by this service.
const RealmAdmin Realm = "admin"

// Claims holds the custom JWT claims for an admin identity assertion.
type Claims struct {
	jwt.RegisteredClaims
	Realm    Realm  `json:"realm"`
	Username string `json:"username"`
}

// JWTManager signs and validates admin identity tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	clock  clock.Clock
}

// NewJWTManager creates a JWT manager. A nil clock uses the system clock.
func NewJWTManager(secret string, expiry time.Duration, clk clock.Clock) *JWTManager {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		clock:  clk,
	}
}

// GenerateToken creates a signed JWT asserting the given identity.
func (m *JWTManager) GenerateToken(id domain.Identity) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.expiry)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
		Realm:    RealmAdmin,
		Username: id.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Realm != RealmAdmin {
		return nil, fmt.Errorf("expected realm %s, got %s", RealmAdmin, claims.Realm)
	}

	return claims, nil
}

// IdentityFromToken validates a token and returns the identity it asserts.
func (m *JWTManager) IdentityFromToken(tokenString string) (domain.Identity, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return domain.Identity{}, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("invalid subject: %w", err)
	}
	return domain.Identity{ID: id, Username: claims.Username}, nil
}
