package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/matching"
)

// Trade is the persisted trade history row.
type Trade struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	TradeID      uint64          `json:"trade_id"`
	MarketID     string          `json:"market_id" gorm:"index"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric"`
	Total        decimal.Decimal `json:"total" gorm:"type:numeric"`
	MakerOrderID uint64          `json:"maker_order_id"`
	TakerOrderID uint64          `json:"taker_order_id"`
	MakerID      uint64          `json:"maker_id"`
	TakerID      uint64          `json:"taker_id"`
	TakerType    string          `json:"taker_type"`
	CreatedAt    time.Time       `json:"created_at"`
}

func TradeFromMatching(t *matching.Trade) *Trade {
	return &Trade{
		TradeID:      t.ID,
		MarketID:     t.Symbol,
		Price:        t.Price,
		Amount:       t.Quantity,
		Total:        t.Total,
		MakerOrderID: t.MakerOrderID,
		TakerOrderID: t.TakerOrderID,
		MakerID:      t.MakerID,
		TakerID:      t.TakerID,
		TakerType:    string(t.TakerSide),
		CreatedAt:    t.CreatedAt,
	}
}

func (t *Trade) Save() error {
	if config.DataBase == nil {
		return nil
	}

	return config.DataBase.Create(t).Error
}

func RecentTrades(marketID string, limit int) ([]*Trade, error) {
	trades := make([]*Trade, 0)

	if config.DataBase == nil {
		return trades, nil
	}

	err := config.DataBase.
		Where("market_id = ?", marketID).
		Order("created_at desc").
		Limit(limit).
		Find(&trades).Error

	return trades, err
}

// WriteToInflux records the trade as an analytics point.
func (t *Trade) WriteToInflux() {
	if config.InfluxDB == nil {
		return
	}

	price, _ := t.Price.Float64()
	amount, _ := t.Amount.Float64()
	total, _ := t.Total.Float64()

	tags := map[string]string{"market": t.MarketID}
	fields := map[string]interface{}{
		"id":         strconv.FormatUint(t.TradeID, 10),
		"price":      price,
		"amount":     amount,
		"total":      total,
		"taker_type": t.TakerType,
		"created_at": t.CreatedAt.Format(time.RFC3339Nano),
	}

	config.InfluxDB.NewPoint("trades", tags, fields)
}
