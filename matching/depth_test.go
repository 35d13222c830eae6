package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resting(id uint64, side OrderSide, price, quantity string) *Order {
	return &Order{
		ID:       id,
		Side:     side,
		Type:     TypeLimit,
		Price:    d(price),
		Quantity: d(quantity),
		State:    StateActive,
	}
}

func TestDepth_BestBidIsHighest(t *testing.T) {
	depth := NewDepth(symbol)

	depth.Add(resting(1, SideBuy, "99", "1"))
	depth.Add(resting(2, SideBuy, "101", "1"))
	depth.Add(resting(3, SideBuy, "100", "1"))

	best := depth.BestBid()
	require.NotNil(t, best)
	assert.True(t, best.Price.Equal(d("101")))
}

func TestDepth_BestAskIsLowest(t *testing.T) {
	depth := NewDepth(symbol)

	depth.Add(resting(1, SideSell, "101", "1"))
	depth.Add(resting(2, SideSell, "99", "1"))
	depth.Add(resting(3, SideSell, "100", "1"))

	best := depth.BestAsk()
	require.NotNil(t, best)
	assert.True(t, best.Price.Equal(d("99")))
}

func TestDepth_FIFOWithinLevel(t *testing.T) {
	depth := NewDepth(symbol)

	depth.Add(resting(7, SideSell, "100", "1"))
	depth.Add(resting(3, SideSell, "100", "1"))
	depth.Add(resting(5, SideSell, "100", "1"))

	best := depth.BestAsk()
	require.NotNil(t, best)
	assert.Equal(t, uint64(3), best.ID)
}

func TestDepth_AddIsIdempotentPerOrder(t *testing.T) {
	depth := NewDepth(symbol)

	order := resting(1, SideBuy, "100", "1")
	depth.Add(order)
	depth.Add(order)

	assert.Equal(t, 1, depth.RestingCount(SideBuy))
}

func TestDepth_RemoveDropsEmptyLevel(t *testing.T) {
	depth := NewDepth(symbol)

	order := resting(1, SideSell, "100", "1")
	depth.Add(order)
	depth.Add(resting(2, SideSell, "110", "1"))

	depth.Remove(order.Key())

	best := depth.BestAsk()
	require.NotNil(t, best)
	assert.True(t, best.Price.Equal(d("110")))
	assert.Equal(t, 1, depth.Asks.Size())
}

func TestDepth_RemoveUnknownKeyIsNoop(t *testing.T) {
	depth := NewDepth(symbol)

	depth.Add(resting(1, SideBuy, "100", "1"))
	depth.Remove(&OrderKey{ID: 99, Side: SideBuy, Price: d("200")})

	assert.Equal(t, 1, depth.RestingCount(SideBuy))
}

func TestDepth_EmptySides(t *testing.T) {
	depth := NewDepth(symbol)

	assert.Nil(t, depth.BestBid())
	assert.Nil(t, depth.BestAsk())
	assert.Zero(t, depth.RestingCount(SideBuy))
	assert.Zero(t, depth.RestingCount(SideSell))
}

func TestDepth_SnapshotAggregatesAndLimits(t *testing.T) {
	depth := NewDepth(symbol)

	depth.Add(resting(1, SideBuy, "100", "2"))
	depth.Add(resting(2, SideBuy, "100", "3"))
	depth.Add(resting(3, SideBuy, "99", "1"))
	depth.Add(resting(4, SideBuy, "98", "1"))
	depth.Add(resting(5, SideSell, "101", "4"))

	bids, asks := depth.Snapshot(2)

	require.Len(t, bids, 2)
	assert.True(t, bids[0].Price.Equal(d("100")))
	assert.True(t, bids[0].Quantity.Equal(d("5")))
	assert.True(t, bids[1].Price.Equal(d("99")))

	require.Len(t, asks, 1)
	assert.True(t, asks[0].Price.Equal(d("101")))
	assert.True(t, asks[0].Quantity.Equal(d("4")))
}

func TestDepth_SnapshotSkipsFilledRemainder(t *testing.T) {
	depth := NewDepth(symbol)

	order := resting(1, SideSell, "100", "10")
	order.Fill(d("4"))
	depth.Add(order)

	_, asks := depth.Snapshot(5)

	require.Len(t, asks, 1)
	assert.True(t, asks[0].Quantity.Equal(d("6")))
}
