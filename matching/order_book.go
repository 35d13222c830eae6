package matching

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/ledger"
)

// DefaultMatchBudget caps the matches a single call may trigger when the
// caller does not supply its own cap. Matching past the cap resumes on the
// next call, so book depth never charges one caller unbounded work.
const DefaultMatchBudget = 100

var bpsDivisor = decimal.New(10000, 0)

// OrderBook is one trading book: the order store, both price indices, the
// fee schedule and running statistics, orchestrated against the shared
// balance ledger and the installed hook. Every mutating operation runs
// end-to-end under one lock; books are mutually independent.
type OrderBook struct {
	mu sync.Mutex

	Symbol    string
	BaseUnit  string
	QuoteUnit string

	makerFeeBps int64
	takerFeeBps int64
	active      bool

	lastPrice   decimal.Decimal
	volume      decimal.Decimal
	lastTradeID uint64

	store  *OrderStore
	depth  *Depth
	ledger *ledger.Ledger
	hooks  *HookDispatcher
	events EventPublisher
}

func NewOrderBook(symbol, baseUnit, quoteUnit string, l *ledger.Ledger, hooks *HookDispatcher, events EventPublisher) *OrderBook {
	if events == nil {
		events = NopPublisher{}
	}

	return &OrderBook{
		Symbol:    symbol,
		BaseUnit:  baseUnit,
		QuoteUnit: quoteUnit,
		active:    true,
		store:     NewOrderStore(),
		depth:     NewDepth(symbol),
		ledger:    l,
		hooks:     hooks,
		events:    events,
	}
}

// SubmitRequest carries one placement. PriceBound is the optional slippage
// bound of a market order: the worst maker price the caller accepts.
// MatchBudget zero means DefaultMatchBudget.
type SubmitRequest struct {
	MemberID    uint64
	Side        OrderSide
	Type        OrderType
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	PriceBound  decimal.NullDecimal
	MatchBudget int
}

// BookStats is a consistent snapshot of the book-level counters.
type BookStats struct {
	Symbol      string          `json:"symbol"`
	LastPrice   decimal.Decimal `json:"last_price"`
	Volume      decimal.Decimal `json:"volume"`
	BidCount    int             `json:"bid_count"`
	AskCount    int             `json:"ask_count"`
	MakerFeeBps int64           `json:"maker_fee_bps"`
	TakerFeeBps int64           `json:"taker_fee_bps"`
	Active      bool            `json:"active"`
}

func (ob *OrderBook) SetFees(makerBps, takerBps int64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.makerFeeBps = makerBps
	ob.takerFeeBps = takerBps
}

// InstallHook replaces the book's hook. Passing nil uninstalls.
func (ob *OrderBook) InstallHook(hook Hook) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.hooks = NewHookDispatcher(hook)
}

func (ob *OrderBook) SetActive(active bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ob.active = active
}

func (ob *OrderBook) Active() bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.active
}

func (ob *OrderBook) Stats() BookStats {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return BookStats{
		Symbol:      ob.Symbol,
		LastPrice:   ob.lastPrice,
		Volume:      ob.volume,
		BidCount:    ob.depth.RestingCount(SideBuy),
		AskCount:    ob.depth.RestingCount(SideSell),
		MakerFeeBps: ob.makerFeeBps,
		TakerFeeBps: ob.takerFeeBps,
		Active:      ob.active,
	}
}

// Get returns a copy of an order.
func (ob *OrderBook) Get(orderID uint64) (Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.store.Get(orderID)
}

// DepthSnapshot returns up to limit aggregated levels per side. It takes
// the book mutex: level quantities re-read resting orders, which fills
// mutate, so the depth lock alone cannot give a consistent snapshot.
func (ob *OrderBook) DepthSnapshot(limit int) (bids, asks []DepthRow) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.depth.Snapshot(limit)
}

func (ob *OrderBook) lockCurrency(side OrderSide) string {
	if side == SideBuy {
		return ob.QuoteUnit
	}

	return ob.BaseUnit
}

// Submit validates, locks funds, records and matches one order. Limit
// remainders rest in the book; market remainders are cancelled outright.
func (ob *OrderBook) Submit(req SubmitRequest) (Order, []*Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if !ob.active {
		return Order{}, nil, &BookInactiveError{Symbol: ob.Symbol}
	}

	price := req.Price
	quantity := req.Quantity

	draft := &Order{
		MemberID: req.MemberID,
		Symbol:   ob.Symbol,
		Side:     req.Side,
		Type:     req.Type,
		Price:    price,
		Quantity: quantity,
	}

	adjustment, err := ob.hooks.BeforePlace(draft)
	if err != nil {
		return Order{}, nil, err
	}
	if adjustment != nil {
		price = price.Add(adjustment.PriceDelta)
		quantity = quantity.Add(adjustment.QuantityDelta)
	}

	order, err := ob.store.Place(req.MemberID, ob.Symbol, req.Side, req.Type, price, quantity)
	if err != nil {
		return Order{}, nil, err
	}

	// A market order must be able to match at least once, otherwise the
	// call fails before any state becomes visible.
	var lockAmount decimal.Decimal
	switch {
	case req.Type == TypeMarket:
		fillable, required := ob.calcMarketOrder(req.Side, quantity, req.PriceBound)
		if !fillable.IsPositive() {
			ob.store.Discard(order.ID)
			return Order{}, nil, &LiquidityError{Symbol: ob.Symbol, Side: req.Side}
		}
		if req.Side == SideBuy {
			lockAmount = required
		} else {
			lockAmount = quantity
		}

	case req.Side == SideBuy:
		lockAmount = price.Mul(quantity)

	default:
		lockAmount = quantity
	}

	if err := ob.ledger.Lock(order.MemberID, ob.lockCurrency(order.Side), lockAmount); err != nil {
		ob.store.Discard(order.ID)
		return Order{}, nil, err
	}
	order.Locked = lockAmount

	config.Logger.Debugf("[quarkex.orderbook] place order with id %d - %s * %s, side %s", order.ID, order.Price, order.Quantity, order.Side)
	ob.events.OrderPlaced(order)

	budget := req.MatchBudget
	if budget <= 0 {
		budget = DefaultMatchBudget
	}

	trades, matchErr := ob.matchIncoming(order, budget, req.PriceBound)

	if order.Type == TypeMarket {
		ob.cancelMarketRemainder(order)
	} else if !order.Filled() && order.State != StateCancelled {
		ob.depth.Add(order)
		if err := ob.hooks.OnBookAdd(order); err != nil {
			return *order, trades, err
		}
		ob.events.OrderBooked(order)
	}

	if matchErr != nil {
		return *order, trades, matchErr
	}

	if err := ob.hooks.AfterPlace(order); err != nil {
		return *order, trades, err
	}

	return *order, trades, nil
}

// matchIncoming walks the counter index while the incoming order crosses
// it. The incoming order is always the taker. An error from a match step
// aborts that step cleanly and stops the loop; completed steps stand.
func (ob *OrderBook) matchIncoming(taker *Order, budget int, bound decimal.NullDecimal) ([]*Trade, error) {
	trades := make([]*Trade, 0)

	for steps := 0; steps < budget && !taker.Filled(); steps++ {
		var maker *Order
		if taker.Side == SideBuy {
			maker = ob.depth.BestAsk()
		} else {
			maker = ob.depth.BestBid()
		}

		if maker == nil {
			break
		}

		if !taker.IsCrossed(maker.Price) {
			break
		}

		if taker.Type == TypeMarket && boundRejects(taker.Side, maker.Price, bound) {
			break
		}

		trade, err := ob.executeMatch(maker, taker, false)
		if trade != nil {
			trades = append(trades, trade)
		}
		if err != nil {
			// A non-nil trade alongside the error already settled; only
			// the aborted step vanishes.
			return trades, err
		}
	}

	return trades, nil
}

// MatchBatch matches an already-crossed book spontaneously, at most cap
// pairs. The later-arrived order of each pair is the taker. Re-invoke to
// continue past the cap.
func (ob *OrderBook) MatchBatch(limit int) ([]*Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if limit <= 0 {
		limit = DefaultMatchBudget
	}

	trades := make([]*Trade, 0)

	for steps := 0; steps < limit; steps++ {
		bid := ob.depth.BestBid()
		ask := ob.depth.BestAsk()

		if bid == nil || ask == nil {
			break
		}

		if bid.Price.LessThan(ask.Price) {
			break
		}

		maker, taker := bid, ask
		if bid.ID > ask.ID {
			maker, taker = ask, bid
		}

		trade, err := ob.executeMatch(maker, taker, true)
		if trade != nil {
			trades = append(trades, trade)
		}
		if err != nil {
			return trades, err
		}
	}

	return trades, nil
}

// executeMatch settles one maker/taker pair. Nothing is written until both
// the hook and the ledger have accepted the match, so an error leaves the
// book exactly as it was.
func (ob *OrderBook) executeMatch(maker, taker *Order, takerResting bool) (*Trade, error) {
	matchQty := decimal.Min(maker.UnfilledQuantity(), taker.UnfilledQuantity())
	matchPrice := maker.Price

	ctx := &MatchContext{
		Symbol:   ob.Symbol,
		Maker:    maker,
		Taker:    taker,
		Price:    matchPrice,
		Quantity: matchQty,
	}

	// One invocation carries both the price adjustment and the fee
	// override for this match.
	adjustment, err := ob.hooks.BeforeMatch(ctx)
	if err != nil {
		return nil, err
	}

	// Fee rates stay decimal end to end, so a fractional bps override is
	// applied exactly.
	makerFeeRate := decimal.New(ob.makerFeeBps, 0)
	takerFeeRate := decimal.New(ob.takerFeeBps, 0)

	if adjustment != nil {
		matchPrice = matchPrice.Add(adjustment.PriceDelta)
		if adjustment.FeeOverride.Valid {
			if adjustment.FeeOverride.Decimal.IsNegative() {
				return nil, &HookContractError{
					Point:  PointBeforeMatch,
					Reason: fmt.Sprintf("negative fee override %s", adjustment.FeeOverride.Decimal),
				}
			}
			takerFeeRate = adjustment.FeeOverride.Decimal
			makerFeeRate = decimal.Zero
		}
	}

	buyer, seller := maker, taker
	buyerFeeRate, sellerFeeRate := makerFeeRate, takerFeeRate
	if taker.Side == SideBuy {
		buyer, seller = taker, maker
		buyerFeeRate, sellerFeeRate = takerFeeRate, makerFeeRate
	}

	// An adjusted price outside either limit would corrupt the locked
	// funds accounting, so it voids the hook's proposal entirely.
	if !matchPrice.IsPositive() ||
		(buyer.Type == TypeLimit && matchPrice.GreaterThan(buyer.Price)) ||
		(seller.Type == TypeLimit && matchPrice.LessThan(seller.Price)) {
		return nil, &HookContractError{
			Point:  PointBeforeMatch,
			Reason: fmt.Sprintf("adjusted price %s outside the matched orders' limits", matchPrice),
		}
	}

	// The buyer's quote funds were reserved at the order price when the
	// order is a limit; a market buy locks at book prices, so its
	// reservation already matches the execution price.
	buyOrderPrice := matchPrice
	if buyer.Type == TypeLimit {
		buyOrderPrice = buyer.Price
	}

	total := matchQty.Mul(matchPrice)
	buyerFee := matchQty.Mul(buyerFeeRate).Div(bpsDivisor)
	sellerFee := total.Mul(sellerFeeRate).Div(bpsDivisor)

	err = ob.ledger.SettleFill(ledger.SettleFill{
		BuyerID:       buyer.MemberID,
		SellerID:      seller.MemberID,
		BaseUnit:      ob.BaseUnit,
		QuoteUnit:     ob.QuoteUnit,
		Quantity:      matchQty,
		ExecPrice:     matchPrice,
		BuyOrderPrice: buyOrderPrice,
		BuyerFee:      buyerFee,
		SellerFee:     sellerFee,
	})
	if err != nil {
		return nil, err
	}

	maker.Fill(matchQty)
	taker.Fill(matchQty)
	buyer.Locked = buyer.Locked.Sub(matchQty.Mul(buyOrderPrice))
	seller.Locked = seller.Locked.Sub(matchQty)

	if maker.Filled() {
		ob.depth.Remove(maker.Key())
		ob.events.OrderRemoved(maker, RemoveFilled)
	}
	if takerResting && taker.Filled() {
		ob.depth.Remove(taker.Key())
		ob.events.OrderRemoved(taker, RemoveFilled)
	}

	ob.lastPrice = matchPrice
	ob.volume = ob.volume.Add(matchQty)

	ob.lastTradeID++
	trade := &Trade{
		ID:           ob.lastTradeID,
		Symbol:       ob.Symbol,
		Price:        matchPrice,
		Quantity:     matchQty,
		Total:        total,
		MakerOrderID: maker.ID,
		TakerOrderID: taker.ID,
		MakerID:      maker.MemberID,
		TakerID:      taker.MemberID,
		TakerSide:    taker.Side,
		CreatedAt:    time.Now(),
	}

	config.Logger.Debugf("[quarkex.orderbook] new trade with price %s, quantity %s", trade.Price, trade.Quantity)

	ob.events.OrderUpdated(maker)
	ob.events.OrderUpdated(taker)
	ob.events.TradeExecuted(trade)

	if err := ob.hooks.AfterMatch(trade); err != nil {
		return trade, err
	}

	return trade, nil
}

// cancelMarketRemainder cancels whatever a market order could not match and
// releases the leftover reservation. A market order never rests.
func (ob *OrderBook) cancelMarketRemainder(order *Order) {
	if order.Filled() {
		return
	}

	order.State = StateCancelled

	if order.Locked.IsPositive() {
		if err := ob.ledger.Unlock(order.MemberID, ob.lockCurrency(order.Side), order.Locked); err != nil {
			config.Logger.Errorf("[quarkex.orderbook] unlock market remainder of order %d: %s", order.ID, err.Error())
		}
		order.Locked = decimal.Zero
	}

	ob.events.OrderUpdated(order)
	ob.events.OrderRemoved(order, RemoveMarketRemainder)
}

// Cancel removes the caller's order from the book and unlocks the unfilled
// remainder. Cancellation works on inactive books too.
func (ob *OrderBook) Cancel(orderID, callerID uint64) (Order, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	current, found := ob.store.Get(orderID)
	if !found {
		return Order{}, &NotFoundError{OrderID: orderID}
	}

	if current.MemberID != callerID {
		return Order{}, &AuthorizationError{OrderID: orderID, MemberID: callerID}
	}

	if current.State.Terminal() {
		return Order{}, &StateError{OrderID: orderID, State: current.State}
	}

	decision, err := ob.hooks.BeforeCancel(&current)
	if err != nil {
		return Order{}, err
	}
	if decision != nil && decision.Veto {
		return Order{}, &CancelVetoedError{OrderID: orderID, Reason: decision.Reason}
	}

	order, err := ob.store.Cancel(orderID, callerID)
	if err != nil {
		return Order{}, err
	}

	if order.Locked.IsPositive() {
		if err := ob.ledger.Unlock(order.MemberID, ob.lockCurrency(order.Side), order.Locked); err != nil {
			return Order{}, err
		}
		order.Locked = decimal.Zero
	}

	ob.depth.Remove(order.Key())

	config.Logger.Debugf("[quarkex.orderbook] cancel order with id %d", order.ID)

	ob.events.OrderUpdated(order)
	ob.events.OrderRemoved(order, RemoveCancelled)

	if err := ob.hooks.AfterCancel(order); err != nil {
		return *order, err
	}

	return *order, nil
}

// CalcMarketOrder sizes a market order against the current book: the
// quantity that can fill within the bound and the funds to reserve for it
// (quote for a buy, base for a sell).
func (ob *OrderBook) CalcMarketOrder(side OrderSide, quantity decimal.Decimal, bound decimal.NullDecimal) (fillable, required decimal.Decimal) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.calcMarketOrder(side, quantity, bound)
}

func (ob *OrderBook) calcMarketOrder(side OrderSide, quantity decimal.Decimal, bound decimal.NullDecimal) (fillable, required decimal.Decimal) {
	levels := ob.depth.Asks
	if side == SideSell {
		levels = ob.depth.Bids
	}

	fillable = decimal.Zero
	required = decimal.Zero
	expected := quantity

	// Walk best-first: the comparator ranks the best level last.
	it := levels.Iterator()
	it.End()
	for it.Prev() && expected.IsPositive() {
		level := it.Value().(*PriceLevel)

		if boundRejects(side, level.Price, bound) {
			break
		}

		take := decimal.Min(level.Total(), expected)
		fillable = fillable.Add(take)
		expected = expected.Sub(take)

		if side == SideBuy {
			required = required.Add(level.Price.Mul(take))
		} else {
			required = required.Add(take)
		}
	}

	return fillable, required
}

func boundRejects(side OrderSide, price decimal.Decimal, bound decimal.NullDecimal) bool {
	if !bound.Valid {
		return false
	}

	if side == SideBuy {
		return price.GreaterThan(bound.Decimal)
	}

	return price.LessThan(bound.Decimal)
}
