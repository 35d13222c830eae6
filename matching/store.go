package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStore is the canonical record of every order a book has seen,
// terminal ones included. It allocates the strictly increasing ids that the
// price indices use for time priority. The store does no locking of its
// own; the owning book serializes access.
type OrderStore struct {
	lastID uint64
	orders map[uint64]*Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[uint64]*Order, 1024),
	}
}

// Place validates and records a new active order. Market orders carry no
// price; limit orders require a positive one.
func (s *OrderStore) Place(memberID uint64, symbol string, side OrderSide, orderType OrderType, price, quantity decimal.Decimal) (*Order, error) {
	if side != SideBuy && side != SideSell {
		return nil, &ValidationError{Field: "side", Reason: "must be buy or sell"}
	}

	if orderType != TypeLimit && orderType != TypeMarket {
		return nil, &ValidationError{Field: "type", Reason: "must be limit or market"}
	}

	if !quantity.IsPositive() {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	switch orderType {
	case TypeLimit:
		if !price.IsPositive() {
			return nil, &ValidationError{Field: "price", Reason: "must be positive for a limit order"}
		}
	case TypeMarket:
		if !price.IsZero() {
			return nil, &ValidationError{Field: "price", Reason: "must be zero for a market order"}
		}
	}

	s.lastID++
	order := &Order{
		ID:        s.lastID,
		UUID:      uuid.New(),
		MemberID:  memberID,
		Symbol:    symbol,
		Side:      side,
		Type:      orderType,
		Price:     price,
		Quantity:  quantity,
		State:     StateActive,
		CreatedAt: time.Now(),
	}
	s.orders[order.ID] = order

	return order, nil
}

// Cancel transitions an order to cancelled after ownership and state checks
// and returns it so the caller can unlock the unfilled remainder.
func (s *OrderStore) Cancel(orderID, callerID uint64) (*Order, error) {
	order, found := s.orders[orderID]
	if !found {
		return nil, &NotFoundError{OrderID: orderID}
	}

	if order.MemberID != callerID {
		return nil, &AuthorizationError{OrderID: orderID, MemberID: callerID}
	}

	if order.State.Terminal() {
		return nil, &StateError{OrderID: orderID, State: order.State}
	}

	order.State = StateCancelled

	return order, nil
}

// Get returns a copy of the order, so readers never observe the record
// mid-mutation.
func (s *OrderStore) Get(orderID uint64) (Order, bool) {
	order, found := s.orders[orderID]
	if !found {
		return Order{}, false
	}

	return *order, true
}

// Discard drops an order that never became visible, used to roll back a
// placement that failed after id allocation.
func (s *OrderStore) Discard(orderID uint64) {
	delete(s.orders, orderID)
}
