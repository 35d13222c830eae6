package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderSide string
type OrderType string
type OrderState int32

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

const (
	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"
)

const (
	StateActive          OrderState = 100
	StatePartiallyFilled OrderState = 110
	StateFilled          OrderState = 200
	StateCancelled       OrderState = -100
)

func (s OrderState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePartiallyFilled:
		return "partially_filled"
	case StateFilled:
		return "filled"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transition.
func (s OrderState) Terminal() bool {
	return s == StateFilled || s == StateCancelled
}

// Order is the canonical order record. ID is assigned strictly increasing
// and doubles as the arrival sequence for time priority. Price is zero only
// for market orders. Locked tracks the funds still reserved for the order
// and shrinks with every fill and on cancellation.
type Order struct {
	ID             uint64          `json:"id"`
	UUID           uuid.UUID       `json:"uuid"`
	MemberID       uint64          `json:"member_id"`
	Symbol         string          `json:"symbol"`
	Side           OrderSide       `json:"side"`
	Type           OrderType       `json:"type"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	Locked         decimal.Decimal `json:"locked"`
	State          OrderState      `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderKey addresses an order inside a price index.
type OrderKey struct {
	ID    uint64
	Side  OrderSide
	Price decimal.Decimal
}

func (o *Order) Key() *OrderKey {
	return &OrderKey{
		ID:    o.ID,
		Side:  o.Side,
		Price: o.Price,
	}
}

func (o *Order) UnfilledQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

func (o *Order) Filled() bool {
	return o.FilledQuantity.Equal(o.Quantity)
}

// IsCrossed reports whether the order would trade at the given counter
// price. Market orders cross any price.
func (o *Order) IsCrossed(price decimal.Decimal) bool {
	if o.Type == TypeMarket {
		return true
	}

	if o.Side == SideBuy {
		return price.LessThanOrEqual(o.Price)
	}

	return price.GreaterThanOrEqual(o.Price)
}

// Fill consumes quantity and moves the state along
// active -> partially_filled -> filled.
func (o *Order) Fill(quantity decimal.Decimal) {
	o.FilledQuantity = o.FilledQuantity.Add(quantity)

	if o.Filled() {
		o.State = StateFilled
	} else {
		o.State = StatePartiallyFilled
	}
}
