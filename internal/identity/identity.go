package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Caller identifies the authenticated principal of a request. It is built
// once at the handler boundary and passed explicitly into services; nothing
// below the handler layer reads request state.
type Caller struct {
	ID    uuid.UUID
	Email string
	Admin bool
}

// IsZero reports whether the caller is anonymous.
func (c Caller) IsZero() bool {
	return c.ID == uuid.Nil
}

const adminLocal = "caller_is_admin"

// FromContext builds a Caller from the verified JWT in Fiber context locals.
// The admin flag is only set when the AdminRequired middleware has run.
func FromContext(c *fiber.Ctx) (Caller, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Caller{}, errors.New("no token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Caller{}, errors.New("missing sub claim")
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return Caller{}, err
	}

	email, _ := claims["email"].(string)
	admin, _ := c.Locals(adminLocal).(bool)

	return Caller{ID: id, Email: email, Admin: admin}, nil
}

// Optional is FromContext for routes where authentication is not required;
// it returns the zero Caller when no valid token is present.
func Optional(c *fiber.Ctx) Caller {
	caller, err := FromContext(c)
	if err != nil {
		return Caller{}
	}
	return caller
}

// MarkAdmin records a verified admin check in context locals so that
// FromContext sets Caller.Admin for the rest of the request.
func MarkAdmin(c *fiber.Ctx) {
	c.Locals(adminLocal, true)
}
