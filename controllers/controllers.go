package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	engine "github.com/quarkex/quarkex/server"

	"github.com/quarkex/quarkex/ledger"
	"github.com/quarkex/quarkex/matching"
)

// Server and Ledger are wired once at startup.
var (
	Server *engine.EngineServer
	Ledger *ledger.Ledger
)

type errorResponse struct {
	Errors []string `json:"errors"`
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Errors: []string{message}})
}

// mapDomainError keeps the engine's error taxonomy visible to clients.
func mapDomainError(c *fiber.Ctx, err error) error {
	var (
		validationErr *matching.ValidationError
		authErr       *matching.AuthorizationError
		stateErr      *matching.StateError
		notFoundErr   *matching.NotFoundError
		liquidityErr  *matching.LiquidityError
		inactiveErr   *matching.BookInactiveError
		vetoErr       *matching.CancelVetoedError
		balanceErr    *ledger.BalanceError
	)

	switch {
	case errors.As(err, &validationErr):
		return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &authErr):
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.As(err, &notFoundErr):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &stateErr), errors.As(err, &vetoErr):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &liquidityErr), errors.As(err, &balanceErr), errors.As(err, &inactiveErr):
		return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrEngineNotFound):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	default:
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}
}
