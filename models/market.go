package models

import (
	"time"

	"github.com/quarkex/quarkex/config"
)

const (
	StateEnabled  = "enabled"
	StateDisabled = "disabled"
)

// Market is the persisted book metadata: assets, fee schedule and state.
// The in-memory registry is authoritative at runtime; rows exist so a
// restart can rebuild the registry.
type Market struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Symbol      string    `json:"symbol" gorm:"uniqueIndex"`
	BaseUnit    string    `json:"base_unit"`
	QuoteUnit   string    `json:"quote_unit"`
	MakerFeeBps int64     `json:"maker_fee_bps" gorm:"default:0"`
	TakerFeeBps int64     `json:"taker_fee_bps" gorm:"default:0"`
	State       string    `json:"state" gorm:"default:enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m *Market) Enabled() bool {
	return m.State == StateEnabled
}

func (m *Market) Save() error {
	if config.DataBase == nil {
		return nil
	}

	return config.DataBase.Save(m).Error
}

func AllMarkets() ([]*Market, error) {
	markets := make([]*Market, 0)

	if config.DataBase == nil {
		return markets, nil
	}

	err := config.DataBase.Order("symbol asc").Find(&markets).Error
	return markets, err
}
