package matching

// RemoveReason explains why an order left the book.
type RemoveReason string

const (
	RemoveFilled          RemoveReason = "filled"
	RemoveCancelled       RemoveReason = "cancelled"
	RemoveMarketRemainder RemoveReason = "market_remainder_cancelled"
)

// EventPublisher receives every state transition as an immutable record.
// The engine never depends on consumers observing them; implementations
// must not block the matching path on anything slow.
type EventPublisher interface {
	OrderPlaced(order *Order)
	OrderBooked(order *Order)
	OrderUpdated(order *Order)
	OrderRemoved(order *Order, reason RemoveReason)
	TradeExecuted(trade *Trade)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(*Order)                {}
func (NopPublisher) OrderBooked(*Order)                {}
func (NopPublisher) OrderUpdated(*Order)               {}
func (NopPublisher) OrderRemoved(*Order, RemoveReason) {}
func (NopPublisher) TradeExecuted(*Trade)              {}
