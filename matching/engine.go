package matching

import (
	"github.com/quarkex/quarkex/ledger"
)

// Engine drives one book. Separate engines share nothing but the ledger,
// so independent books may be mutated concurrently.
type Engine struct {
	Market      string
	OrderBook   *OrderBook
	Initialized bool
}

func NewEngine(market, baseUnit, quoteUnit string, l *ledger.Ledger, hook Hook, events EventPublisher) *Engine {
	return &Engine{
		Market:      market,
		OrderBook:   NewOrderBook(market, baseUnit, quoteUnit, l, NewHookDispatcher(hook), events),
		Initialized: true,
	}
}

func (e *Engine) Submit(req SubmitRequest) (Order, []*Trade, error) {
	return e.OrderBook.Submit(req)
}

func (e *Engine) Cancel(orderID, callerID uint64) (Order, error) {
	return e.OrderBook.Cancel(orderID, callerID)
}

func (e *Engine) MatchBatch(limit int) ([]*Trade, error) {
	return e.OrderBook.MatchBatch(limit)
}
