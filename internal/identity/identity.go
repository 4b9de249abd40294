// Package identity resolves the authenticated user for a request. The
// resolved Identity is passed explicitly into stores and controllers.
package identity

import (
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the current user as seen by every store and generation call.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

func (i Identity) IsZero() bool { return i.ID == uuid.Nil }

// Owner is the value stored in owner foreign-key fields.
func (i Identity) Owner() string { return i.ID.String() }

// Require returns an AuthenticationError for a zero identity.
func (i Identity) Require() error {
	if i.IsZero() {
		return apperrors.Unauthenticated("no current user")
	}
	return nil
}

const localsKey = "identity"

// FromClaims builds an Identity from access token claims (sub, email, name).
func FromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return Identity{}, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, err
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if name == "" {
		name = DisplayNameFor(email)
	}
	return Identity{ID: id, Email: email, DisplayName: name}, nil
}

// DisplayNameFor falls back to the local part of an email address.
func DisplayNameFor(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Get returns the identity stored by the Resolve middleware, or reads it
// from the JWT placed in locals by jwtware.
func Get(c *fiber.Ctx) (Identity, error) {
	if id, ok := c.Locals(localsKey).(Identity); ok {
		return id, nil
	}
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return Identity{}, apperrors.Unauthenticated("invalid token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, apperrors.Unauthenticated("invalid claims")
	}
	id, err := FromClaims(claims)
	if err != nil {
		return Identity{}, apperrors.Unauthenticated(err.Error())
	}
	return id, nil
}

// Set stores id for the remainder of the request.
func Set(c *fiber.Ctx, id Identity) {
	c.Locals(localsKey, id)
}
