package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/username/portview/src/logger"
)

// CustomerKey is the fixed key under which the login collaborator persists
// the session identity.
const CustomerKey = "portview.customer"

// ErrIdentityUnresolved means no usable session identity exists yet. It is a
// precondition, not a failure: fetches must simply wait for resolution.
var ErrIdentityUnresolved = errors.New("session: identity unresolved")

// identityEnvelope is the structured storage form. Either field may carry
// the identifier, depending on which collaborator wrote it.
type identityEnvelope struct {
	Value      string `json:"value"`
	CustomerID string `json:"customerId"`
}

// identityClaims are the JWT claims of a token-form identity.
type identityClaims struct {
	CustomerID string `json:"customerID"`
	jwt.RegisteredClaims
}

// Resolver extracts the customer identifier from the session store. It is
// the single decode routine for all three storage forms: a raw identifier
// string, a JSON envelope, or a signed JWT.
type Resolver struct {
	store     *Store
	jwtSecret string
}

// NewResolver returns a resolver over the given store. jwtSecret may be
// empty, in which case token-form identities are decoded without signature
// verification (the token is only an identity hint on this side; the
// transport credential is what the server trusts).
func NewResolver(store *Store, jwtSecret string) *Resolver {
	return &Resolver{store: store, jwtSecret: jwtSecret}
}

// Resolve returns the customer identifier, or ErrIdentityUnresolved when the
// store holds no usable identity.
func (r *Resolver) Resolve() (string, error) {
	raw, err := r.store.Get(CustomerKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", ErrIdentityUnresolved
		}
		return "", err
	}

	id, err := r.decode(raw)
	if err != nil {
		logger.L.Warn("Stored session identity could not be decoded", "error", err)
		return "", ErrIdentityUnresolved
	}
	return id, nil
}

func (r *Resolver) decode(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("empty identity value")
	}

	switch {
	case strings.HasPrefix(value, "{"):
		return decodeEnvelope(value)
	case strings.Count(value, ".") == 2:
		return r.decodeToken(value)
	default:
		// Raw-string storage form.
		return value, nil
	}
}

func decodeEnvelope(value string) (string, error) {
	var env identityEnvelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		return "", fmt.Errorf("malformed identity envelope: %w", err)
	}
	if env.CustomerID != "" {
		return env.CustomerID, nil
	}
	if env.Value != "" {
		return env.Value, nil
	}
	return "", fmt.Errorf("identity envelope carries no identifier")
}

func (r *Resolver) decodeToken(value string) (string, error) {
	claims := &identityClaims{}

	if r.jwtSecret == "" {
		parser := jwt.NewParser()
		if _, _, err := parser.ParseUnverified(value, claims); err != nil {
			return "", fmt.Errorf("malformed identity token: %w", err)
		}
	} else {
		token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(r.jwtSecret), nil
		})
		if err != nil {
			return "", fmt.Errorf("identity token validation failed: %w", err)
		}
		if !token.Valid {
			return "", fmt.Errorf("identity token invalid")
		}
	}

	if claims.CustomerID != "" {
		return claims.CustomerID, nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	return "", fmt.Errorf("identity token carries no customer identifier")
}
