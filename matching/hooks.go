package matching

import "github.com/shopspring/decimal"

// HookPoint enumerates the lifecycle extension points.
type HookPoint uint8

const (
	PointBeforePlace HookPoint = iota
	PointAfterPlace
	PointBeforeCancel
	PointAfterCancel
	PointBeforeMatch
	PointAfterMatch
	PointBookAdd
)

func (p HookPoint) String() string {
	switch p {
	case PointBeforePlace:
		return "before_place"
	case PointAfterPlace:
		return "after_place"
	case PointBeforeCancel:
		return "before_cancel"
	case PointAfterCancel:
		return "after_cancel"
	case PointBeforeMatch:
		return "before_match"
	case PointAfterMatch:
		return "after_match"
	case PointBookAdd:
		return "book_add"
	default:
		return "unknown"
	}
}

// HookCapability is the set of points a hook implements. The dispatcher
// skips any point outside the set without calling the hook.
type HookCapability uint16

const (
	CapBeforePlace  HookCapability = 1 << PointBeforePlace
	CapAfterPlace   HookCapability = 1 << PointAfterPlace
	CapBeforeCancel HookCapability = 1 << PointBeforeCancel
	CapAfterCancel  HookCapability = 1 << PointAfterCancel
	CapBeforeMatch  HookCapability = 1 << PointBeforeMatch
	CapAfterMatch   HookCapability = 1 << PointAfterMatch
	CapBookAdd      HookCapability = 1 << PointBookAdd
)

func (c HookCapability) Has(point HookPoint) bool {
	return c&(1<<point) != 0
}

// HookAck tags a hook acknowledgment. Each point expects one tag; anything
// else is a contract violation.
type HookAck uint8

const (
	AckNone HookAck = iota
	AckPlace
	AckCancel
	AckMatch
	AckBook
)

// Ack is the acknowledgment of an observational point.
type Ack struct {
	Tag HookAck
}

// PlaceAdjustment may shift an incoming order's price and quantity by
// additive deltas before validation and fund locking.
type PlaceAdjustment struct {
	Tag           HookAck
	PriceDelta    decimal.Decimal
	QuantityDelta decimal.Decimal
}

// MatchAdjustment may shift one match's execution price and replace the
// taker fee for that match. An override also zeroes the maker fee: it
// substitutes for the schedule, it does not add to it.
type MatchAdjustment struct {
	Tag         HookAck
	PriceDelta  decimal.Decimal
	FeeOverride decimal.NullDecimal
}

// CancelDecision may veto a cancellation.
type CancelDecision struct {
	Tag    HookAck
	Veto   bool
	Reason string
}

// MatchContext is what a before-match hook sees: both orders and the
// proposed execution before any state was touched.
type MatchContext struct {
	Symbol   string
	Maker    *Order
	Taker    *Order
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Hook observes and adjusts order lifecycle transitions. Before-points may
// return adjustments or a veto; after-points and the book-add point are
// observational. Implementations declare the points they serve through
// Capabilities.
type Hook interface {
	Capabilities() HookCapability
	BeforePlace(order *Order) PlaceAdjustment
	AfterPlace(order *Order) Ack
	BeforeCancel(order *Order) CancelDecision
	AfterCancel(order *Order) Ack
	BeforeMatch(ctx *MatchContext) MatchAdjustment
	AfterMatch(trade *Trade) Ack
	OnBookAdd(order *Order) Ack
}

// HookDispatcher routes lifecycle points to an installed hook, gated by its
// capability set. All dispatch is synchronous and in-process. A nil
// dispatcher or an uninstalled point is a no-op.
type HookDispatcher struct {
	hook Hook
	caps HookCapability
}

func NewHookDispatcher(hook Hook) *HookDispatcher {
	dispatcher := &HookDispatcher{hook: hook}
	if hook != nil {
		dispatcher.caps = hook.Capabilities()
	}

	return dispatcher
}

func (d *HookDispatcher) enabled(point HookPoint) bool {
	return d != nil && d.hook != nil && d.caps.Has(point)
}

func (d *HookDispatcher) BeforePlace(order *Order) (*PlaceAdjustment, error) {
	if !d.enabled(PointBeforePlace) {
		return nil, nil
	}

	adjustment := d.hook.BeforePlace(order)
	if adjustment.Tag != AckPlace {
		return nil, &HookContractError{Point: PointBeforePlace, Got: adjustment.Tag}
	}

	return &adjustment, nil
}

func (d *HookDispatcher) AfterPlace(order *Order) error {
	if !d.enabled(PointAfterPlace) {
		return nil
	}

	if ack := d.hook.AfterPlace(order); ack.Tag != AckPlace {
		return &HookContractError{Point: PointAfterPlace, Got: ack.Tag}
	}

	return nil
}

func (d *HookDispatcher) BeforeCancel(order *Order) (*CancelDecision, error) {
	if !d.enabled(PointBeforeCancel) {
		return nil, nil
	}

	decision := d.hook.BeforeCancel(order)
	if decision.Tag != AckCancel {
		return nil, &HookContractError{Point: PointBeforeCancel, Got: decision.Tag}
	}

	return &decision, nil
}

func (d *HookDispatcher) AfterCancel(order *Order) error {
	if !d.enabled(PointAfterCancel) {
		return nil
	}

	if ack := d.hook.AfterCancel(order); ack.Tag != AckCancel {
		return &HookContractError{Point: PointAfterCancel, Got: ack.Tag}
	}

	return nil
}

func (d *HookDispatcher) BeforeMatch(ctx *MatchContext) (*MatchAdjustment, error) {
	if !d.enabled(PointBeforeMatch) {
		return nil, nil
	}

	adjustment := d.hook.BeforeMatch(ctx)
	if adjustment.Tag != AckMatch {
		return nil, &HookContractError{Point: PointBeforeMatch, Got: adjustment.Tag}
	}

	return &adjustment, nil
}

func (d *HookDispatcher) AfterMatch(trade *Trade) error {
	if !d.enabled(PointAfterMatch) {
		return nil
	}

	if ack := d.hook.AfterMatch(trade); ack.Tag != AckMatch {
		return &HookContractError{Point: PointAfterMatch, Got: ack.Tag}
	}

	return nil
}

func (d *HookDispatcher) OnBookAdd(order *Order) error {
	if !d.enabled(PointBookAdd) {
		return nil
	}

	if ack := d.hook.OnBookAdd(order); ack.Tag != AckBook {
		return &HookContractError{Point: PointBookAdd, Got: ack.Tag}
	}

	return nil
}
