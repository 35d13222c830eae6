package engine

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/quarkex/quarkex/config"
	"github.com/quarkex/quarkex/ledger"
	"github.com/quarkex/quarkex/matching"
	"github.com/quarkex/quarkex/models"
	"github.com/quarkex/quarkex/types"
)

var (
	ErrEngineNotFound = errors.New("engine not found")
	ErrEngineNotReady = errors.New("engine is not ready")
	ErrMarketExists   = errors.New("market already exists")
)

// EngineServer owns every book: one matching engine per market, addressed
// by symbol, sharing nothing but the balance ledger. It is the
// administrative surface for market creation, fee schedules, activation
// and hook authorization.
type EngineServer struct {
	mu sync.RWMutex

	Engines map[string]*matching.Engine
	Markets map[string]*models.Market

	Ledger *ledger.Ledger
	events matching.EventPublisher
}

func NewEngineServer(l *ledger.Ledger, events matching.EventPublisher) *EngineServer {
	return &EngineServer{
		Engines: make(map[string]*matching.Engine),
		Markets: make(map[string]*models.Market),
		Ledger:  l,
		events:  events,
	}
}

// Reload rebuilds the registry from the persisted markets.
func (s *EngineServer) Reload() error {
	markets, err := models.AllMarkets()
	if err != nil {
		return err
	}

	for _, market := range markets {
		s.register(market)
	}

	return nil
}

// Bootstrap seeds markets from the yaml config, skipping ones that exist.
func (s *EngineServer) Bootstrap(configs []config.MarketConfig) {
	for _, mc := range configs {
		if _, err := s.CreateMarket(mc.Symbol, mc.BaseUnit, mc.QuoteUnit, mc.MakerFeeBps, mc.TakerFeeBps); err != nil && !errors.Is(err, ErrMarketExists) {
			config.Logger.Errorf("[quarkex.engine] bootstrap %s: %s", mc.Symbol, err.Error())
		}
	}
}

func (s *EngineServer) register(market *models.Market) *matching.Engine {
	e := matching.NewEngine(market.Symbol, market.BaseUnit, market.QuoteUnit, s.Ledger, nil, s.events)
	e.OrderBook.SetFees(market.MakerFeeBps, market.TakerFeeBps)
	e.OrderBook.SetActive(market.Enabled())

	s.mu.Lock()
	s.Engines[market.Symbol] = e
	s.Markets[market.Symbol] = market
	s.mu.Unlock()

	return e
}

func (s *EngineServer) CreateMarket(symbol, baseUnit, quoteUnit string, makerFeeBps, takerFeeBps int64) (*models.Market, error) {
	s.mu.RLock()
	_, found := s.Markets[symbol]
	s.mu.RUnlock()
	if found {
		return nil, ErrMarketExists
	}

	market := &models.Market{
		Symbol:      symbol,
		BaseUnit:    baseUnit,
		QuoteUnit:   quoteUnit,
		MakerFeeBps: makerFeeBps,
		TakerFeeBps: takerFeeBps,
		State:       models.StateEnabled,
	}

	if err := market.Save(); err != nil {
		return nil, err
	}

	s.register(market)
	config.Logger.Infof("[quarkex.engine] market %s created", symbol)

	return market, nil
}

func (s *EngineServer) SetMarketState(symbol string, active bool) error {
	s.mu.RLock()
	e := s.Engines[symbol]
	market := s.Markets[symbol]
	s.mu.RUnlock()

	if e == nil {
		return ErrEngineNotFound
	}

	e.OrderBook.SetActive(active)
	if active {
		market.State = models.StateEnabled
	} else {
		market.State = models.StateDisabled
	}

	return market.Save()
}

func (s *EngineServer) SetTradingFees(symbol string, makerFeeBps, takerFeeBps int64) error {
	s.mu.RLock()
	e := s.Engines[symbol]
	market := s.Markets[symbol]
	s.mu.RUnlock()

	if e == nil {
		return ErrEngineNotFound
	}

	e.OrderBook.SetFees(makerFeeBps, takerFeeBps)
	market.MakerFeeBps = makerFeeBps
	market.TakerFeeBps = takerFeeBps

	return market.Save()
}

// AuthorizeHook installs a hook on one book. Passing nil uninstalls.
func (s *EngineServer) AuthorizeHook(symbol string, hook matching.Hook) error {
	e := s.GetEngineByMarket(symbol)
	if e == nil {
		return ErrEngineNotFound
	}

	e.OrderBook.InstallHook(hook)

	return nil
}

func (s *EngineServer) GetEngineByMarket(market string) *matching.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Engines[market]
}

// Stats returns the live counters of one book.
func (s *EngineServer) Stats(symbol string) (matching.BookStats, error) {
	e := s.GetEngineByMarket(symbol)
	if e == nil {
		return matching.BookStats{}, ErrEngineNotFound
	}

	return e.OrderBook.Stats(), nil
}

// AllStats returns the live counters of every book.
func (s *EngineServer) AllStats() []matching.BookStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]matching.BookStats, 0, len(s.Engines))
	for _, e := range s.Engines {
		stats = append(stats, e.OrderBook.Stats())
	}

	return stats
}

// SubmitOrder places an order on its market's engine and persists the
// resulting order and trade rows.
func (s *EngineServer) SubmitOrder(market string, req matching.SubmitRequest) (matching.Order, []*matching.Trade, error) {
	e := s.GetEngineByMarket(market)
	if e == nil {
		return matching.Order{}, nil, ErrEngineNotFound
	}

	if !e.Initialized {
		return matching.Order{}, nil, ErrEngineNotReady
	}

	order, trades, err := e.Submit(req)

	// Trades completed before a mid-loop failure are settled state, so the
	// projection is written even when the submission returns an error.
	s.persist(e, &order, trades)

	return order, trades, err
}

// CancelOrder cancels on behalf of the caller. It works on disabled
// markets too.
func (s *EngineServer) CancelOrder(market string, orderID, memberID uint64) (matching.Order, error) {
	e := s.GetEngineByMarket(market)
	if e == nil {
		return matching.Order{}, ErrEngineNotFound
	}

	order, err := e.Cancel(orderID, memberID)
	if err != nil {
		return order, err
	}

	if err := models.OrderFromMatching(&order).Save(); err != nil {
		config.Logger.Errorf("[quarkex.engine] persist order %d: %s", order.ID, err.Error())
	}

	return order, nil
}

func (s *EngineServer) persist(e *matching.Engine, order *matching.Order, trades []*matching.Trade) {
	if order.ID != 0 {
		if err := models.OrderFromMatching(order).Save(); err != nil {
			config.Logger.Errorf("[quarkex.engine] persist order %d: %s", order.ID, err.Error())
		}
	}

	for _, trade := range trades {
		// Each fill also advanced the maker's state; project its row too.
		if maker, found := e.OrderBook.Get(trade.MakerOrderID); found {
			if err := models.OrderFromMatching(&maker).Save(); err != nil {
				config.Logger.Errorf("[quarkex.engine] persist order %d: %s", maker.ID, err.Error())
			}
		}

		row := models.TradeFromMatching(trade)
		if err := row.Save(); err != nil {
			config.Logger.Errorf("[quarkex.engine] persist trade %d: %s", trade.ID, err.Error())
		}
		row.WriteToInflux()
	}
}

// Process dispatches one message from the matching topic.
func (s *EngineServer) Process(payload []byte) error {
	var message types.MatchingPayloadMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return err
	}

	switch message.Action {
	case types.ActionSubmit:
		_, _, err := s.SubmitOrder(message.Market, matching.SubmitRequest{
			MemberID:   message.MemberID,
			Side:       message.Side,
			Type:       message.OrdType,
			Price:      message.Price,
			Quantity:   message.Quantity,
			PriceBound: message.Bound,
		})
		return err

	case types.ActionCancel:
		_, err := s.CancelOrder(message.Market, message.OrderID, message.MemberID)
		return err

	default:
		config.Logger.Errorf("[quarkex.engine] unknown action: %s", message.Action)
		return nil
	}
}
