// Package auth implements the credential hasher and the access token codec.
// Tokens are stateless: every claim needed by the authorization gate is
// embedded in the signed payload and re-verified on each request.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

// DefaultAccessTTL is used when no token lifetime is configured.
const DefaultAccessTTL = 15 * time.Minute

// ErrInvalidToken is the single failure mode of VerifyAccessToken. Expiry,
// a bad signature and structural invalidity all collapse into it; callers
// never learn which sub-cause fired.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the decoded payload of an access token. UserID is carried as a
// string in the token; older tokens with a numeric id claim are converted
// during verification so comparison sites only ever see the string form.
type Claims struct {
	Subject string     // email address, the "sub" claim
	Role    model.Role // validated against the closed role set
	UserID  string     // canonical string form of the user id
	Name    string     // display name
}

// AccessToken bundles a signed token string with its absolute expiry so
// callers can derive the cookie max-age without re-parsing the token.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// IssueAccessToken builds and signs an HMAC JWT carrying the given claims.
// The expiry is absolute: now + ttl. A zero or negative ttl produces an
// already-expired token; callers wanting the default lifetime pass
// DefaultAccessTTL explicitly.
func IssueAccessToken(secret, alg string, cl Claims, ttl time.Duration) (AccessToken, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return AccessToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub":  cl.Subject,
		"role": string(cl.Role),
		"id":   cl.UserID,
		"name": cl.Name,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates raw against the secret and the
// allowed algorithms, returning the decoded claims. Any failure (expired,
// tampered, wrong algorithm, malformed, unknown role) yields ErrInvalidToken.
func VerifyAccessToken(raw, secret string, algs []string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods(algs), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	name, _ := mc["name"].(string)
	roleStr, _ := mc["role"].(string)
	role, ok := model.ParseRole(roleStr)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	id, ok := stringID(mc["id"])
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return Claims{Subject: sub, Role: role, UserID: id, Name: name}, nil
}

// stringID normalizes the id claim. Some issued tokens carried the numeric
// database id, others its decimal string; both map to the string form.
func stringID(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t, true
		}
	case float64:
		return strconv.FormatUint(uint64(t), 10), true
	}
	return "", false
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
}
