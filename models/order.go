package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/matching"
)

// Order is the persisted projection of a matching order, written on every
// state transition.
type Order struct {
	ID             uint64          `json:"id" gorm:"primaryKey"`
	UUID           uuid.UUID       `json:"uuid"`
	MemberID       uint64          `json:"member_id" gorm:"index"`
	MarketID       string          `json:"market_id" gorm:"index"`
	Side           string          `json:"side"`
	OrdType        string          `json:"ord_type"`
	Price          decimal.Decimal `json:"price" gorm:"type:numeric"`
	Quantity       decimal.Decimal `json:"quantity" gorm:"type:numeric"`
	FilledQuantity decimal.Decimal `json:"filled_quantity" gorm:"type:numeric"`
	State          string          `json:"state"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func OrderFromMatching(o *matching.Order) *Order {
	return &Order{
		ID:             o.ID,
		UUID:           o.UUID,
		MemberID:       o.MemberID,
		MarketID:       o.Symbol,
		Side:           string(o.Side),
		OrdType:        string(o.Type),
		Price:          o.Price,
		Quantity:       o.Quantity,
		FilledQuantity: o.FilledQuantity,
		State:          o.State.String(),
		CreatedAt:      o.CreatedAt,
	}
}

func (o *Order) Save() error {
	if config.DataBase == nil {
		return nil
	}

	return config.DataBase.Save(o).Error
}
