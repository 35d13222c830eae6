package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/quarkex/quarkex/matching"
)

type CreateOrderPayload struct {
	Market   string `json:"market" validate:"required"`
	Side     string `json:"side" validate:"required|in:buy,sell"`
	OrdType  string `json:"ord_type" validate:"required|in:limit,market"`
	Price    string `json:"price"`
	Quantity string `json:"quantity" validate:"required"`
	// Bound is the optional slippage bound of a market order.
	Bound string `json:"bound"`
}

func CreateOrder(c *fiber.Ctx) error {
	memberID := c.Locals("member_id").(uint64)

	payload := new(CreateOrderPayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "market.order.invalid_payload")
	}

	if v := validate.Struct(payload); !v.Validate() {
		return jsonError(c, fiber.StatusUnprocessableEntity, v.Errors.One())
	}

	price := decimal.Zero
	if payload.Price != "" {
		parsed, err := decimal.NewFromString(payload.Price)
		if err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "market.order.invalid_price")
		}
		price = parsed
	}

	quantity, err := decimal.NewFromString(payload.Quantity)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "market.order.invalid_quantity")
	}

	bound := decimal.NullDecimal{}
	if payload.Bound != "" {
		parsed, err := decimal.NewFromString(payload.Bound)
		if err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "market.order.invalid_bound")
		}
		bound = decimal.NullDecimal{Decimal: parsed, Valid: true}
	}

	order, trades, err := Server.SubmitOrder(payload.Market, matching.SubmitRequest{
		MemberID:   memberID,
		Side:       matching.OrderSide(payload.Side),
		Type:       matching.OrderType(payload.OrdType),
		Price:      price,
		Quantity:   quantity,
		PriceBound: bound,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":  order,
		"trades": trades,
	})
}

func CancelOrder(c *fiber.Ctx) error {
	memberID := c.Locals("member_id").(uint64)

	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "market.order.invalid_id")
	}

	order, err := Server.CancelOrder(c.Query("market"), orderID, memberID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(order)
}

func GetOrder(c *fiber.Ctx) error {
	memberID := c.Locals("member_id").(uint64)

	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "market.order.invalid_id")
	}

	e := Server.GetEngineByMarket(c.Query("market"))
	if e == nil {
		return jsonError(c, fiber.StatusNotFound, "public.market.doesnt_exist")
	}

	order, found := e.OrderBook.Get(orderID)
	if !found || order.MemberID != memberID {
		return jsonError(c, fiber.StatusNotFound, "market.order.doesnt_exist")
	}

	return c.JSON(order)
}

func GetBalances(c *fiber.Ctx) error {
	memberID := c.Locals("member_id").(uint64)

	return c.JSON(Ledger.Accounts(memberID))
}
