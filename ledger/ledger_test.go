package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerSuite struct {
	suite.Suite

	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = New()
}

func (s *LedgerSuite) d(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	s.Require().NoError(err)

	return parsed
}

func (s *LedgerSuite) TestDepositWithdraw() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("1000")))
	s.Require().NoError(s.ledger.Withdraw(1, "usdt", s.d("400")))

	account := s.ledger.Get(1, "usdt")
	s.True(account.Balance.Equal(s.d("600")))
	s.True(account.Locked.IsZero())
}

func (s *LedgerSuite) TestWithdrawBeyondBalance() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("100")))

	err := s.ledger.Withdraw(1, "usdt", s.d("101"))

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))
	s.Equal("sub_funds", balanceErr.Op)

	account := s.ledger.Get(1, "usdt")
	s.True(account.Balance.Equal(s.d("100")))
}

func (s *LedgerSuite) TestLockedFundsAreNotSpendable() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("1000")))
	s.Require().NoError(s.ledger.Lock(1, "usdt", s.d("700")))

	err := s.ledger.Withdraw(1, "usdt", s.d("500"))

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))

	account := s.ledger.Get(1, "usdt")
	s.True(account.Balance.Equal(s.d("300")))
	s.True(account.Locked.Equal(s.d("700")))
	s.True(account.Amount().Equal(s.d("1000")))
}

func (s *LedgerSuite) TestLockUnlockRoundTrip() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("1000")))
	s.Require().NoError(s.ledger.Lock(1, "usdt", s.d("700")))
	s.Require().NoError(s.ledger.Unlock(1, "usdt", s.d("700")))

	account := s.ledger.Get(1, "usdt")
	s.True(account.Balance.Equal(s.d("1000")))
	s.True(account.Locked.IsZero())
}

func (s *LedgerSuite) TestUnlockBeyondLocked() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("1000")))
	s.Require().NoError(s.ledger.Lock(1, "usdt", s.d("100")))

	err := s.ledger.Unlock(1, "usdt", s.d("101"))

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))
	s.Equal("unlock_funds", balanceErr.Op)
}

func (s *LedgerSuite) TestGetUnknownAccountCreatesNothing() {
	account := s.ledger.Get(9, "btc")

	s.True(account.Balance.IsZero())
	s.True(account.Locked.IsZero())
	s.Empty(s.ledger.Accounts(9))
}

func (s *LedgerSuite) seedFill() {
	// Buyer locked quote at the order price 105, seller locked the base.
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("10000")))
	s.Require().NoError(s.ledger.Deposit(2, "btc", s.d("50")))
	s.Require().NoError(s.ledger.Lock(1, "usdt", s.d("1050")))
	s.Require().NoError(s.ledger.Lock(2, "btc", s.d("10")))
}

func (s *LedgerSuite) TestSettleFillWithRefund() {
	s.seedFill()

	err := s.ledger.SettleFill(SettleFill{
		BuyerID:       1,
		SellerID:      2,
		BaseUnit:      "btc",
		QuoteUnit:     "usdt",
		Quantity:      s.d("10"),
		ExecPrice:     s.d("100"),
		BuyOrderPrice: s.d("105"),
		BuyerFee:      decimal.Zero,
		SellerFee:     decimal.Zero,
	})
	s.Require().NoError(err)

	// The buyer pays the execution price; the locked surplus comes back.
	buyerQuote := s.ledger.Get(1, "usdt")
	s.True(buyerQuote.Balance.Equal(s.d("9000")))
	s.True(buyerQuote.Locked.IsZero())

	buyerBase := s.ledger.Get(1, "btc")
	s.True(buyerBase.Balance.Equal(s.d("10")))

	sellerBase := s.ledger.Get(2, "btc")
	s.True(sellerBase.Balance.Equal(s.d("40")))
	s.True(sellerBase.Locked.IsZero())

	sellerQuote := s.ledger.Get(2, "usdt")
	s.True(sellerQuote.Balance.Equal(s.d("1000")))
}

func (s *LedgerSuite) TestSettleFillCollectsFees() {
	s.seedFill()

	err := s.ledger.SettleFill(SettleFill{
		BuyerID:       1,
		SellerID:      2,
		BaseUnit:      "btc",
		QuoteUnit:     "usdt",
		Quantity:      s.d("10"),
		ExecPrice:     s.d("105"),
		BuyOrderPrice: s.d("105"),
		BuyerFee:      s.d("0.02"),
		SellerFee:     s.d("1.05"),
	})
	s.Require().NoError(err)

	buyerBase := s.ledger.Get(1, "btc")
	s.True(buyerBase.Balance.Equal(s.d("9.98")))

	sellerQuote := s.ledger.Get(2, "usdt")
	s.True(sellerQuote.Balance.Equal(s.d("1048.95")))

	s.True(s.ledger.Revenue("btc").Equal(s.d("0.02")))
	s.True(s.ledger.Revenue("usdt").Equal(s.d("1.05")))
}

func (s *LedgerSuite) TestSettleFillConservation() {
	s.seedFill()

	err := s.ledger.SettleFill(SettleFill{
		BuyerID:       1,
		SellerID:      2,
		BaseUnit:      "btc",
		QuoteUnit:     "usdt",
		Quantity:      s.d("10"),
		ExecPrice:     s.d("103"),
		BuyOrderPrice: s.d("105"),
		BuyerFee:      s.d("0.01"),
		SellerFee:     s.d("2"),
	})
	s.Require().NoError(err)

	quote := s.ledger.Get(1, "usdt").Amount().
		Add(s.ledger.Get(2, "usdt").Amount()).
		Add(s.ledger.Revenue("usdt"))
	s.True(quote.Equal(s.d("10000")))

	base := s.ledger.Get(1, "btc").Amount().
		Add(s.ledger.Get(2, "btc").Amount()).
		Add(s.ledger.Revenue("btc"))
	s.True(base.Equal(s.d("50")))
}

func (s *LedgerSuite) TestSettleFillValidatesBeforeMutating() {
	s.seedFill()

	// Seller has only 10 locked; a 20 unit fill must fail whole.
	err := s.ledger.SettleFill(SettleFill{
		BuyerID:       1,
		SellerID:      2,
		BaseUnit:      "btc",
		QuoteUnit:     "usdt",
		Quantity:      s.d("20"),
		ExecPrice:     s.d("50"),
		BuyOrderPrice: s.d("50"),
		BuyerFee:      decimal.Zero,
		SellerFee:     decimal.Zero,
	})

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))

	buyerQuote := s.ledger.Get(1, "usdt")
	s.True(buyerQuote.Balance.Equal(s.d("8950")))
	s.True(buyerQuote.Locked.Equal(s.d("1050")))

	sellerBase := s.ledger.Get(2, "btc")
	s.True(sellerBase.Locked.Equal(s.d("10")))

	buyerBase := s.ledger.Get(1, "btc")
	s.True(buyerBase.Balance.IsZero())
}

func (s *LedgerSuite) TestSettleFillRejectsExecAboveReservation() {
	s.seedFill()

	err := s.ledger.SettleFill(SettleFill{
		BuyerID:       1,
		SellerID:      2,
		BaseUnit:      "btc",
		QuoteUnit:     "usdt",
		Quantity:      s.d("10"),
		ExecPrice:     s.d("110"),
		BuyOrderPrice: s.d("105"),
		BuyerFee:      decimal.Zero,
		SellerFee:     decimal.Zero,
	})

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))
}

func (s *LedgerSuite) TestAccountsListsMemberHoldings() {
	s.Require().NoError(s.ledger.Deposit(1, "usdt", s.d("10")))
	s.Require().NoError(s.ledger.Deposit(1, "btc", s.d("1")))
	s.Require().NoError(s.ledger.Deposit(2, "usdt", s.d("5")))

	accounts := s.ledger.Accounts(1)
	s.Len(accounts, 2)
	for _, account := range accounts {
		s.Equal(uint64(1), account.MemberID)
	}
}

func (s *LedgerSuite) TestBalanceErrorMessage() {
	err := s.ledger.Withdraw(7, "usdt", s.d("3"))

	var balanceErr *BalanceError
	s.Require().True(errors.As(err, &balanceErr))
	s.Contains(balanceErr.Error(), "usdt")
	s.Contains(balanceErr.Error(), "sub_funds")
}
