package engine

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/ledger"
	"github.com/quarkex/quarkex/matching"
	"github.com/quarkex/quarkex/types"
)

func d(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func newServer(t *testing.T) *EngineServer {
	t.Helper()

	l := ledger.New()
	for _, member := range []uint64{1, 2} {
		require.NoError(t, l.Deposit(member, "usdt", d("100000")))
		require.NoError(t, l.Deposit(member, "btc", d("1000")))
		require.NoError(t, l.Deposit(member, "eth", d("1000")))
	}

	s := NewEngineServer(l, nil)
	_, err := s.CreateMarket("btcusdt", "btc", "usdt", 0, 0)
	require.NoError(t, err)

	return s
}

func submit(member uint64, side matching.OrderSide, price, quantity string) matching.SubmitRequest {
	return matching.SubmitRequest{
		MemberID: member,
		Side:     side,
		Type:     matching.TypeLimit,
		Price:    d(price),
		Quantity: d(quantity),
	}
}

func TestEngineServer_CreateMarket(t *testing.T) {
	s := newServer(t)

	e := s.GetEngineByMarket("btcusdt")
	require.NotNil(t, e)
	assert.True(t, e.Initialized)
	assert.True(t, e.OrderBook.Active())

	_, err := s.CreateMarket("btcusdt", "btc", "usdt", 0, 0)
	assert.ErrorIs(t, err, ErrMarketExists)
}

func TestEngineServer_BooksAreIndependent(t *testing.T) {
	s := newServer(t)
	_, err := s.CreateMarket("ethusdt", "eth", "usdt", 0, 0)
	require.NoError(t, err)

	_, _, err = s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)
	_, _, err = s.SubmitOrder("ethusdt", submit(2, matching.SideBuy, "10", "5"))
	require.NoError(t, err)

	btc, err := s.Stats("btcusdt")
	require.NoError(t, err)
	eth, err := s.Stats("ethusdt")
	require.NoError(t, err)

	assert.Equal(t, 1, btc.BidCount)
	assert.Equal(t, 1, eth.BidCount)

	// Order ids are per book.
	_, err = s.CancelOrder("ethusdt", 1, 2)
	assert.NoError(t, err)
	order, err := s.CancelOrder("btcusdt", 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, matching.StateCancelled, order.State)
}

func TestEngineServer_UnknownMarket(t *testing.T) {
	s := newServer(t)

	_, _, err := s.SubmitOrder("dogeusdt", submit(1, matching.SideBuy, "1", "1"))
	assert.ErrorIs(t, err, ErrEngineNotFound)

	_, err = s.CancelOrder("dogeusdt", 1, 1)
	assert.ErrorIs(t, err, ErrEngineNotFound)

	_, err = s.Stats("dogeusdt")
	assert.ErrorIs(t, err, ErrEngineNotFound)

	assert.ErrorIs(t, s.SetMarketState("dogeusdt", false), ErrEngineNotFound)
	assert.ErrorIs(t, s.SetTradingFees("dogeusdt", 1, 1), ErrEngineNotFound)
	assert.ErrorIs(t, s.AuthorizeHook("dogeusdt", nil), ErrEngineNotFound)
}

func TestEngineServer_DisabledMarketStillCancels(t *testing.T) {
	s := newServer(t)

	order, _, err := s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)

	require.NoError(t, s.SetMarketState("btcusdt", false))
	assert.Equal(t, "disabled", s.Markets["btcusdt"].State)

	_, _, err = s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))
	var inactiveErr *matching.BookInactiveError
	require.ErrorAs(t, err, &inactiveErr)

	_, err = s.CancelOrder("btcusdt", order.ID, 1)
	assert.NoError(t, err)

	require.NoError(t, s.SetMarketState("btcusdt", true))
	_, _, err = s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))
	assert.NoError(t, err)
}

func TestEngineServer_SetTradingFees(t *testing.T) {
	s := newServer(t)

	require.NoError(t, s.SetTradingFees("btcusdt", 10, 20))

	stats, err := s.Stats("btcusdt")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.MakerFeeBps)
	assert.Equal(t, int64(20), stats.TakerFeeBps)
	assert.Equal(t, int64(10), s.Markets["btcusdt"].MakerFeeBps)
}

func TestEngineServer_StatsTrackTrades(t *testing.T) {
	s := newServer(t)

	_, _, err := s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)
	_, trades, err := s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))
	require.NoError(t, err)
	require.Len(t, trades, 1)

	stats, err := s.Stats("btcusdt")
	require.NoError(t, err)
	assert.True(t, stats.LastPrice.Equal(d("100")))
	assert.True(t, stats.Volume.Equal(d("5")))

	all := s.AllStats()
	require.Len(t, all, 1)
	assert.Equal(t, "btcusdt", all[0].Symbol)
}

type countingHook struct {
	matches int
}

func (h *countingHook) Capabilities() matching.HookCapability { return matching.CapAfterMatch }
func (h *countingHook) BeforePlace(*matching.Order) matching.PlaceAdjustment {
	return matching.PlaceAdjustment{Tag: matching.AckPlace}
}
func (h *countingHook) AfterPlace(*matching.Order) matching.Ack {
	return matching.Ack{Tag: matching.AckPlace}
}
func (h *countingHook) BeforeCancel(*matching.Order) matching.CancelDecision {
	return matching.CancelDecision{Tag: matching.AckCancel}
}
func (h *countingHook) AfterCancel(*matching.Order) matching.Ack {
	return matching.Ack{Tag: matching.AckCancel}
}
func (h *countingHook) BeforeMatch(*matching.MatchContext) matching.MatchAdjustment {
	return matching.MatchAdjustment{Tag: matching.AckMatch}
}
func (h *countingHook) AfterMatch(*matching.Trade) matching.Ack {
	h.matches++
	return matching.Ack{Tag: matching.AckMatch}
}
func (h *countingHook) OnBookAdd(*matching.Order) matching.Ack {
	return matching.Ack{Tag: matching.AckBook}
}

func TestEngineServer_AuthorizeHook(t *testing.T) {
	s := newServer(t)

	hook := &countingHook{}
	require.NoError(t, s.AuthorizeHook("btcusdt", hook))

	_, _, err := s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)
	_, _, err = s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))
	require.NoError(t, err)
	assert.Equal(t, 1, hook.matches)

	// Uninstall stops dispatch.
	require.NoError(t, s.AuthorizeHook("btcusdt", nil))
	_, _, err = s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)
	_, _, err = s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))
	require.NoError(t, err)
	assert.Equal(t, 1, hook.matches)
}

type badAckHook struct {
	countingHook
}

func (h *badAckHook) AfterMatch(*matching.Trade) matching.Ack {
	return matching.Ack{Tag: matching.AckBook}
}

func TestEngineServer_SubmitReportsSettledTradesOnHookError(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.AuthorizeHook("btcusdt", &badAckHook{}))

	_, _, err := s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "5"))
	require.NoError(t, err)

	_, trades, err := s.SubmitOrder("btcusdt", submit(2, matching.SideSell, "100", "5"))

	var contractErr *matching.HookContractError
	require.ErrorAs(t, err, &contractErr)

	// The fill settled before the hook misbehaved; the caller still sees
	// it and the book counters reflect it.
	require.Len(t, trades, 1)
	stats, statsErr := s.Stats("btcusdt")
	require.NoError(t, statsErr)
	assert.True(t, stats.Volume.Equal(d("5")))
	assert.True(t, stats.LastPrice.Equal(d("100")))
}

func TestEngineServer_SubmitValidationErrorPropagates(t *testing.T) {
	s := newServer(t)

	_, trades, err := s.SubmitOrder("btcusdt", submit(1, matching.SideBuy, "100", "0"))

	var validationErr *matching.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, trades)
}

func TestEngineServer_ProcessSubmitAndCancel(t *testing.T) {
	s := newServer(t)

	payload, err := json.Marshal(types.MatchingPayloadMessage{
		Action:   types.ActionSubmit,
		Market:   "btcusdt",
		MemberID: 1,
		Side:     matching.SideBuy,
		OrdType:  matching.TypeLimit,
		Price:    d("100"),
		Quantity: d("5"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Process(payload))

	stats, err := s.Stats("btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.BidCount)

	payload, err = json.Marshal(types.MatchingPayloadMessage{
		Action:   types.ActionCancel,
		Market:   "btcusdt",
		MemberID: 1,
		OrderID:  1,
	})
	require.NoError(t, err)
	require.NoError(t, s.Process(payload))

	stats, err = s.Stats("btcusdt")
	require.NoError(t, err)
	assert.Zero(t, stats.BidCount)
}

func TestEngineServer_ProcessRejectsGarbage(t *testing.T) {
	s := newServer(t)

	assert.Error(t, s.Process([]byte("{not json")))
	assert.NoError(t, s.Process([]byte(`{"action":"noop"}`)))
}

func TestEngineServer_Bootstrap(t *testing.T) {
	s := newServer(t)

	s.Bootstrap([]config.MarketConfig{
		{Symbol: "ethusdt", BaseUnit: "eth", QuoteUnit: "usdt", MakerFeeBps: 5, TakerFeeBps: 10},
		{Symbol: "btcusdt", BaseUnit: "btc", QuoteUnit: "usdt"},
	})

	stats, err := s.Stats("ethusdt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.MakerFeeBps)

	// The existing market was left untouched.
	assert.Len(t, s.AllStats(), 2)
}
