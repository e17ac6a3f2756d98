package api

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"resident-portal/domain"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

// Auth validates portal tokens. Two modes:
//
//   - local: HS256 with a shared secret; the portal issues these itself via
//     the login stub (there is no real identity provider behind it)
//   - jwks: RS256 validated against an external JWKS endpoint, for deployments
//     that front the portal with a real issuer
type Auth struct {
	JWKS     *keyfunc.JWKS
	Audience string
	Issuer   string
	Secret   []byte

	parser *jwt.Parser
}

// NewLocalAuth creates an Auth that signs and validates HS256 tokens with
// the given shared secret.
func NewLocalAuth(secret []byte) *Auth {
	return &Auth{
		Secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

// NewJWKSAuth creates an Auth that validates RS256 tokens against a JWKS.
// The login stub is disabled in this mode.
func NewJWKSAuth(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	return &Auth{
		JWKS:     jwks,
		Audience: audience,
		Issuer:   issuer,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}
}

// IssueToken mints a portal token carrying the caller's name and role.
func (a *Auth) IssueToken(userID, name string, role domain.Role, ttl time.Duration) (string, error) {
	if len(a.Secret) == 0 {
		return "", errors.New("token issuing requires local auth mode")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// IdentityFromAuthHeader extracts the caller identity from an Authorization
// header of the form "Bearer <token>".
func (a *Auth) IdentityFromAuthHeader(h string) (Identity, error) {
	h = strings.TrimSpace(h)
	if h == "" {
		return Identity{}, errMissingAuthorization
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, errBadAuthorization
	}
	tokenStr := parts[1]
	if strings.Count(tokenStr, ".") != 2 {
		return Identity{}, errBadAuthorization
	}

	token, err := a.parser.Parse(tokenStr, a.keyFor)
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return Identity{}, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return Identity{}, errors.New("token not valid yet")
	}
	if a.Audience != "" && !claims.VerifyAudience(a.Audience, false) {
		return Identity{}, errors.New("invalid audience")
	}
	if a.Issuer != "" && !claims.VerifyIssuer(a.Issuer, false) {
		return Identity{}, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("missing sub")
	}
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return Identity{}, err
	}
	name, _ := claims["name"].(string)

	return Identity{UserID: sub, Name: name, Role: role}, nil
}

func (a *Auth) keyFor(token *jwt.Token) (any, error) {
	if len(a.Secret) > 0 {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.Secret, nil
	}
	if a.JWKS == nil {
		return nil, errors.New("jwks not configured")
	}
	return a.JWKS.Keyfunc(token)
}
