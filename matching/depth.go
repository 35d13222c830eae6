package matching

import (
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"
)

// Depth holds both price indices of a book: red-black trees of price
// levels, ordered so the rightmost node is always the best price on its
// side. Writers are serialized by the owning book; the depth lock only
// shields concurrent snapshot readers.
type Depth struct {
	depthMutex sync.RWMutex

	Symbol string
	Asks   *redblacktree.Tree
	Bids   *redblacktree.Tree
}

func NewDepth(symbol string) *Depth {
	return &Depth{
		Symbol: symbol,
		Asks:   redblacktree.NewWith(levelComparator),
		Bids:   redblacktree.NewWith(levelComparator),
	}
}

// levelComparator ranks the better price greater, so tree.Right() is the
// best level: highest bid, lowest ask.
func levelComparator(a, b interface{}) int {
	this := a.(*PriceLevelKey)
	that := b.(*PriceLevelKey)

	switch {
	case this.Side == SideSell && this.Price.LessThan(that.Price):
		return 1

	case this.Side == SideSell && this.Price.GreaterThan(that.Price):
		return -1

	case this.Side == SideBuy && this.Price.LessThan(that.Price):
		return -1

	case this.Side == SideBuy && this.Price.GreaterThan(that.Price):
		return 1

	default:
		return 0
	}
}

func (d *Depth) tree(side OrderSide) *redblacktree.Tree {
	if side == SideSell {
		return d.Asks
	}

	return d.Bids
}

func (d *Depth) Add(order *Order) {
	d.depthMutex.Lock()
	defer d.depthMutex.Unlock()

	levels := d.tree(order.Side)
	level := NewPriceLevel(order.Side, order.Price)

	value, found := levels.Get(level.Key())
	if found {
		level = value.(*PriceLevel)
	} else {
		levels.Put(level.Key(), level)
	}

	level.Add(order)
}

func (d *Depth) Remove(key *OrderKey) {
	d.depthMutex.Lock()
	defer d.depthMutex.Unlock()

	levels := d.tree(key.Side)
	levelKey := &PriceLevelKey{Side: key.Side, Price: key.Price}

	value, found := levels.Get(levelKey)
	if !found {
		return
	}

	level := value.(*PriceLevel)
	level.Remove(key.ID)

	if level.Empty() {
		levels.Remove(levelKey)
	}
}

// BestBid returns the oldest order at the highest bid, or nil.
func (d *Depth) BestBid() *Order {
	d.depthMutex.RLock()
	defer d.depthMutex.RUnlock()

	return best(d.Bids)
}

// BestAsk returns the oldest order at the lowest ask, or nil.
func (d *Depth) BestAsk() *Order {
	d.depthMutex.RLock()
	defer d.depthMutex.RUnlock()

	return best(d.Asks)
}

func best(levels *redblacktree.Tree) *Order {
	node := levels.Right()
	if node == nil {
		return nil
	}

	return node.Value.(*PriceLevel).Top()
}

// RestingCount returns the number of resting orders on one side.
func (d *Depth) RestingCount(side OrderSide) int {
	d.depthMutex.RLock()
	defer d.depthMutex.RUnlock()

	count := 0
	for _, value := range d.tree(side).Values() {
		count += value.(*PriceLevel).Size()
	}

	return count
}

// DepthRow is one aggregated price level of a snapshot.
type DepthRow struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Snapshot returns up to limit aggregated levels per side, best first.
func (d *Depth) Snapshot(limit int) (bids, asks []DepthRow) {
	d.depthMutex.RLock()
	defer d.depthMutex.RUnlock()

	return collect(d.Bids, limit), collect(d.Asks, limit)
}

func collect(levels *redblacktree.Tree, limit int) []DepthRow {
	rows := make([]DepthRow, 0, limit)

	it := levels.Iterator()
	it.End()
	for it.Prev() && len(rows) < limit {
		level := it.Value().(*PriceLevel)
		rows = append(rows, DepthRow{Price: level.Price, Quantity: level.Total()})
	}

	return rows
}
