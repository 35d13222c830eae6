package types

import (
	"github.com/shopspring/decimal"

	"github.com/quarkex/quarkex/matching"
)

type PayloadAction = string

var (
	ActionSubmit PayloadAction = "submit"
	ActionCancel PayloadAction = "cancel"
)

// MatchingPayloadMessage is one message on the matching topic.
type MatchingPayloadMessage struct {
	Action   PayloadAction       `json:"action"`
	Market   string              `json:"market"`
	MemberID uint64              `json:"member_id"`
	OrderID  uint64              `json:"order_id,omitempty"`
	Side     matching.OrderSide  `json:"side,omitempty"`
	OrdType  matching.OrderType  `json:"ord_type,omitempty"`
	Price    decimal.Decimal     `json:"price,omitempty"`
	Quantity decimal.Decimal     `json:"quantity,omitempty"`
	Bound    decimal.NullDecimal `json:"bound,omitempty"`
}

type TakerType = string

var (
	TypeBuy  TakerType = "buy"
	TypeSell TakerType = "sell"
)
