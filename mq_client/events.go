package mq_client

import (
	"encoding/json"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/matching"
)

const (
	TopicOrderEvents = "order_events"
	TopicTradeEvents = "trade_events"
)

// EventsPublisher streams every engine state transition to kafka. The
// engine does not depend on consumers observing them, so publish failures
// are logged and swallowed; without a kafka service events are dropped.
type EventsPublisher struct{}

func NewEventsPublisher() *EventsPublisher {
	return &EventsPublisher{}
}

type orderEvent struct {
	Event string          `json:"event"`
	Order *matching.Order `json:"order"`
	// Reason is set only on order_removed.
	Reason matching.RemoveReason `json:"reason,omitempty"`
}

type tradeEvent struct {
	Event string          `json:"event"`
	Trade *matching.Trade `json:"trade"`
}

func (p *EventsPublisher) publish(topic, symbol string, payload interface{}) {
	if config.Kafka == nil {
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		config.Logger.Errorf("[quarkex.events] marshal: %s", err.Error())
		return
	}

	if err := config.Kafka.Publish(topic, []byte(symbol), message); err != nil {
		config.Logger.Errorf("[quarkex.events] publish %s: %s", topic, err.Error())
	}
}

func (p *EventsPublisher) OrderPlaced(order *matching.Order) {
	p.publish(TopicOrderEvents, order.Symbol, orderEvent{Event: "order_placed", Order: order})
}

func (p *EventsPublisher) OrderBooked(order *matching.Order) {
	p.publish(TopicOrderEvents, order.Symbol, orderEvent{Event: "order_booked", Order: order})
}

func (p *EventsPublisher) OrderUpdated(order *matching.Order) {
	p.publish(TopicOrderEvents, order.Symbol, orderEvent{Event: "order_updated", Order: order})
}

func (p *EventsPublisher) OrderRemoved(order *matching.Order, reason matching.RemoveReason) {
	p.publish(TopicOrderEvents, order.Symbol, orderEvent{Event: "order_removed", Order: order, Reason: reason})
}

func (p *EventsPublisher) TradeExecuted(trade *matching.Trade) {
	p.publish(TopicTradeEvents, trade.Symbol, tradeEvent{Event: "trade_executed", Trade: trade})
}
