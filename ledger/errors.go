package ledger

import "fmt"

// BalanceError reports an account operation that would take a balance or a
// locked bucket negative.
type BalanceError struct {
	Op         string
	MemberID   uint64
	CurrencyID string
	Amount     string
	Balance    string
	Locked     string
}

func newBalanceError(op string, a *Account, amount fmt.Stringer) *BalanceError {
	return &BalanceError{
		Op:         op,
		MemberID:   a.MemberID,
		CurrencyID: a.CurrencyID,
		Amount:     amount.String(),
		Balance:    a.Balance.String(),
		Locked:     a.Locked.String(),
	}
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf(
		"ledger: cannot %s (member id: %d, currency id: %s, amount: %s, balance: %s, locked: %s)",
		e.Op, e.MemberID, e.CurrencyID, e.Amount, e.Balance, e.Locked,
	)
}
