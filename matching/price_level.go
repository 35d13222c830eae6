package matching

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PriceLevel is the FIFO queue of resting orders at one price. Orders are
// kept sorted by id, so the first entry is always the oldest. A partial
// fill mutates the order in place and never moves it.
type PriceLevel struct {
	Side   OrderSide
	Price  decimal.Decimal
	Orders []*Order
}

type PriceLevelKey struct {
	Side  OrderSide
	Price decimal.Decimal
}

func NewPriceLevel(side OrderSide, price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Side:   side,
		Price:  price,
		Orders: make([]*Order, 0),
	}
}

func (p *PriceLevel) Key() *PriceLevelKey {
	return &PriceLevelKey{
		Side:  p.Side,
		Price: p.Price,
	}
}

func (p *PriceLevel) Add(order *Order) {
	for _, o := range p.Orders {
		if o.ID == order.ID {
			return
		}
	}

	p.Orders = append(p.Orders, order)
	sort.Slice(p.Orders, func(i, j int) bool {
		return p.Orders[i].ID < p.Orders[j].ID
	})
}

// Top returns the oldest order at this price.
func (p *PriceLevel) Top() *Order {
	if p.Empty() {
		return nil
	}

	return p.Orders[0]
}

func (p *PriceLevel) Empty() bool {
	return len(p.Orders) == 0
}

func (p *PriceLevel) Size() int {
	return len(p.Orders)
}

func (p *PriceLevel) Total() decimal.Decimal {
	total := decimal.Zero

	for _, order := range p.Orders {
		total = total.Add(order.UnfilledQuantity())
	}

	return total
}

func (p *PriceLevel) Remove(orderID uint64) {
	for index, o := range p.Orders {
		if o.ID == orderID {
			p.Orders = append(p.Orders[:index], p.Orders[index+1:]...)
			return
		}
	}
}
