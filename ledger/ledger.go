package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Account holds the funds of one member in one currency. Balance is the
// spendable part, Locked is reserved for resting orders.
type Account struct {
	MemberID   uint64          `json:"member_id"`
	CurrencyID string          `json:"currency_id"`
	Balance    decimal.Decimal `json:"balance"`
	Locked     decimal.Decimal `json:"locked"`
}

func (a Account) Amount() decimal.Decimal {
	return a.Balance.Add(a.Locked)
}

func (a *Account) PlusFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newBalanceError("plus_funds", a, amount)
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) SubFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Balance) {
		return newBalanceError("sub_funds", a, amount)
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) LockFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Balance) {
		return newBalanceError("lock_funds", a, amount)
	}

	a.Balance = a.Balance.Sub(amount)
	a.Locked = a.Locked.Add(amount)
	return nil
}

func (a *Account) UnlockFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Locked) {
		return newBalanceError("unlock_funds", a, amount)
	}

	a.Balance = a.Balance.Add(amount)
	a.Locked = a.Locked.Sub(amount)
	return nil
}

// UnlockAndSubFunds releases locked funds without returning them to the
// balance, used when locked funds are spent by a fill.
func (a *Account) UnlockAndSubFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(a.Locked) {
		return newBalanceError("unlock_and_sub_funds", a, amount)
	}

	a.Locked = a.Locked.Sub(amount)
	return nil
}

type accountKey struct {
	MemberID   uint64
	CurrencyID string
}

// Ledger keeps every account in memory. Accounts are created on first touch
// and are never removed. The ledger is shared between engines, so every
// operation takes the ledger lock; a fill settlement is atomic under it.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[accountKey]*Account
	revenue  map[string]decimal.Decimal
}

func New() *Ledger {
	return &Ledger{
		accounts: make(map[accountKey]*Account),
		revenue:  make(map[string]decimal.Decimal),
	}
}

func (l *Ledger) account(memberID uint64, currencyID string) *Account {
	key := accountKey{MemberID: memberID, CurrencyID: currencyID}

	account, found := l.accounts[key]
	if !found {
		account = &Account{
			MemberID:   memberID,
			CurrencyID: currencyID,
			Balance:    decimal.Zero,
			Locked:     decimal.Zero,
		}
		l.accounts[key] = account
	}

	return account
}

// Get returns a copy of the account, creating nothing.
func (l *Ledger) Get(memberID uint64, currencyID string) Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	account, found := l.accounts[accountKey{MemberID: memberID, CurrencyID: currencyID}]
	if !found {
		return Account{MemberID: memberID, CurrencyID: currencyID, Balance: decimal.Zero, Locked: decimal.Zero}
	}

	return *account
}

// Accounts returns copies of every account of a member.
func (l *Ledger) Accounts(memberID uint64) []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts := make([]Account, 0)
	for key, account := range l.accounts {
		if key.MemberID == memberID {
			accounts = append(accounts, *account)
		}
	}

	return accounts
}

// Revenue returns the fees collected so far in a currency.
func (l *Ledger) Revenue(currencyID string) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.revenue[currencyID]
}

// Deposit credits the balance after an external transfer in was confirmed.
func (l *Ledger) Deposit(memberID uint64, currencyID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(memberID, currencyID).PlusFunds(amount)
}

// Withdraw debits the balance before an external transfer out.
func (l *Ledger) Withdraw(memberID uint64, currencyID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(memberID, currencyID).SubFunds(amount)
}

func (l *Ledger) Lock(memberID uint64, currencyID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(memberID, currencyID).LockFunds(amount)
}

func (l *Ledger) Unlock(memberID uint64, currencyID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.account(memberID, currencyID).UnlockFunds(amount)
}

// SettleFill moves the value of one fill between the buyer and the seller.
//
// The buyer's quote funds were locked at the buy order's price, which can be
// higher than the execution price when the resting order was the cheaper
// side. The full reservation quantity*BuyOrderPrice is released and the
// favorable difference returns to the buyer's balance, so the buyer pays
// exactly quantity*ExecPrice. Fees are debited from what each side receives
// and accumulate in the ledger revenue buckets.
//
// All movements are validated before any account is touched; an error leaves
// the ledger unchanged.
func (l *Ledger) SettleFill(fill SettleFill) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	buyerQuote := l.account(fill.BuyerID, fill.QuoteUnit)
	buyerBase := l.account(fill.BuyerID, fill.BaseUnit)
	sellerBase := l.account(fill.SellerID, fill.BaseUnit)
	sellerQuote := l.account(fill.SellerID, fill.QuoteUnit)

	reserved := fill.Quantity.Mul(fill.BuyOrderPrice)
	total := fill.Quantity.Mul(fill.ExecPrice)
	refund := reserved.Sub(total)

	buyerIncome := fill.Quantity.Sub(fill.BuyerFee)
	sellerIncome := total.Sub(fill.SellerFee)

	switch {
	case !fill.Quantity.IsPositive():
		return newBalanceError("settle_fill", buyerQuote, fill.Quantity)
	case reserved.GreaterThan(buyerQuote.Locked):
		return newBalanceError("settle_fill", buyerQuote, reserved)
	case fill.Quantity.GreaterThan(sellerBase.Locked):
		return newBalanceError("settle_fill", sellerBase, fill.Quantity)
	case refund.IsNegative():
		return newBalanceError("settle_fill", buyerQuote, refund)
	case fill.BuyerFee.IsNegative() || buyerIncome.IsNegative():
		return newBalanceError("settle_fill", buyerBase, fill.BuyerFee)
	case fill.SellerFee.IsNegative() || sellerIncome.IsNegative():
		return newBalanceError("settle_fill", sellerQuote, fill.SellerFee)
	}

	buyerQuote.Locked = buyerQuote.Locked.Sub(reserved)
	buyerQuote.Balance = buyerQuote.Balance.Add(refund)
	buyerBase.Balance = buyerBase.Balance.Add(buyerIncome)

	sellerBase.Locked = sellerBase.Locked.Sub(fill.Quantity)
	sellerQuote.Balance = sellerQuote.Balance.Add(sellerIncome)

	l.revenue[fill.BaseUnit] = l.revenue[fill.BaseUnit].Add(fill.BuyerFee)
	l.revenue[fill.QuoteUnit] = l.revenue[fill.QuoteUnit].Add(fill.SellerFee)

	return nil
}

// SettleFill describes one fill to settle. BuyOrderPrice is the price the
// buyer's quote funds were locked at; for market buys it equals ExecPrice.
type SettleFill struct {
	BuyerID       uint64
	SellerID      uint64
	BaseUnit      string
	QuoteUnit     string
	Quantity      decimal.Decimal
	ExecPrice     decimal.Decimal
	BuyOrderPrice decimal.Decimal
	BuyerFee      decimal.Decimal
	SellerFee     decimal.Decimal
}
