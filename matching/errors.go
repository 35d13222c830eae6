package matching

import "fmt"

// ValidationError rejects a malformed order before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("matching: invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError rejects an operation on an order the caller does not own.
type AuthorizationError struct {
	OrderID  uint64
	MemberID uint64
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("matching: member %d is not the owner of order %d", e.MemberID, e.OrderID)
}

// StateError rejects an operation on an order outside its valid source states.
type StateError struct {
	OrderID uint64
	State   OrderState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("matching: order %d is %s", e.OrderID, e.State)
}

// NotFoundError reports an unknown order id.
type NotFoundError struct {
	OrderID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("matching: order %d not found", e.OrderID)
}

// LiquidityError rejects a market order that cannot match anything, either
// because the counter side is empty or because the slippage bound refused
// the very first candidate.
type LiquidityError struct {
	Symbol string
	Side   OrderSide
}

func (e *LiquidityError) Error() string {
	return fmt.Sprintf("matching: no matchable %s liquidity on %s", counterSide(e.Side), e.Symbol)
}

func counterSide(side OrderSide) OrderSide {
	if side == SideBuy {
		return SideSell
	}

	return SideBuy
}

// BookInactiveError rejects a placement on a disabled book. Cancellations
// stay allowed.
type BookInactiveError struct {
	Symbol string
}

func (e *BookInactiveError) Error() string {
	return fmt.Sprintf("matching: book %s is disabled", e.Symbol)
}

// CancelVetoedError reports a cancellation refused by a before-cancel hook.
type CancelVetoedError struct {
	OrderID uint64
	Reason  string
}

func (e *CancelVetoedError) Error() string {
	return fmt.Sprintf("matching: cancellation of order %d vetoed: %s", e.OrderID, e.Reason)
}

// HookContractError reports a hook response that violates its extension
// point's contract: a mismatched acknowledgment tag, or an adjustment the
// point cannot honor (Reason set). It is fatal for the enclosing
// operation, never a business outcome.
type HookContractError struct {
	Point  HookPoint
	Got    HookAck
	Reason string
}

func (e *HookContractError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("matching: hook violated the %s contract: %s", e.Point, e.Reason)
	}

	return fmt.Sprintf("matching: hook returned ack %d for point %s", e.Got, e.Point)
}
