package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"
)

type CreateMarketPayload struct {
	Symbol      string `json:"symbol" validate:"required"`
	BaseUnit    string `json:"base_unit" validate:"required"`
	QuoteUnit   string `json:"quote_unit" validate:"required"`
	MakerFeeBps int64  `json:"maker_fee_bps"`
	TakerFeeBps int64  `json:"taker_fee_bps"`
}

func CreateMarket(c *fiber.Ctx) error {
	payload := new(CreateMarketPayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "admin.market.invalid_payload")
	}

	if v := validate.Struct(payload); !v.Validate() {
		return jsonError(c, fiber.StatusUnprocessableEntity, v.Errors.One())
	}

	market, err := Server.CreateMarket(payload.Symbol, payload.BaseUnit, payload.QuoteUnit, payload.MakerFeeBps, payload.TakerFeeBps)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(market)
}

type MarketStatePayload struct {
	Active bool `json:"active"`
}

func SetMarketState(c *fiber.Ctx) error {
	payload := new(MarketStatePayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "admin.market.invalid_payload")
	}

	if err := Server.SetMarketState(c.Params("symbol"), payload.Active); err != nil {
		return mapDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

type TradingFeesPayload struct {
	MakerFeeBps int64 `json:"maker_fee_bps"`
	TakerFeeBps int64 `json:"taker_fee_bps"`
}

func SetTradingFees(c *fiber.Ctx) error {
	payload := new(TradingFeesPayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "admin.market.invalid_payload")
	}

	if payload.MakerFeeBps < 0 || payload.TakerFeeBps < 0 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "admin.market.negative_fee")
	}

	if err := Server.SetTradingFees(c.Params("symbol"), payload.MakerFeeBps, payload.TakerFeeBps); err != nil {
		return mapDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

type FundingPayload struct {
	MemberID uint64 `json:"member_id" validate:"required"`
	Currency string `json:"currency" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
}

// Deposit credits a member after the custody system confirmed a transfer
// in. It is the only way value enters the ledger besides fills.
func Deposit(c *fiber.Ctx) error {
	payload := new(FundingPayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "admin.funding.invalid_payload")
	}

	if v := validate.Struct(payload); !v.Validate() {
		return jsonError(c, fiber.StatusUnprocessableEntity, v.Errors.One())
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "admin.funding.invalid_amount")
	}

	if err := Ledger.Deposit(payload.MemberID, payload.Currency, amount); err != nil {
		return mapDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// Withdraw debits a member before the custody system transfers out.
func Withdraw(c *fiber.Ctx) error {
	payload := new(FundingPayload)
	if err := c.BodyParser(payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "admin.funding.invalid_payload")
	}

	if v := validate.Struct(payload); !v.Validate() {
		return jsonError(c, fiber.StatusUnprocessableEntity, v.Errors.One())
	}

	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "admin.funding.invalid_amount")
	}

	if err := Ledger.Withdraw(payload.MemberID, payload.Currency, amount); err != nil {
		return mapDomainError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
