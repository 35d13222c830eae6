package middlewares

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MemberAuth resolves the caller identity set by the upstream gateway.
// Ownership checks inside the engine rely on this id.
func MemberAuth(c *fiber.Ctx) error {
	memberID, err := strconv.ParseUint(c.Get("X-Member-ID"), 10, 64)
	if err != nil || memberID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errors": []string{"auth.member.missing_identity"},
		})
	}

	c.Locals("member_id", memberID)

	return c.Next()
}
