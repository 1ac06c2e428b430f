package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"p2pbank/internal/money"
)

// The methods below are the composite, one-transaction-per-call operations
// handlers actually call; they compose the primitives in store.go the way
// the teacher's AtomicWithdraw/AtomicTransfer/AtomicDepositWithIdempotency
// compose SELECT ... FOR UPDATE-style primitives in postgres.go, adapted
// from account-pair transfers to this node's single-account mutations plus
// the account-numbering and ledger rules of spec.md §4.A/§4.D.

// CreateAccount issues the next account number and inserts the account,
// recording an INITIAL_DEPOSIT ledger entry when balance > 0. Returns
// ErrLimitReached if the next number would exceed 99999.
func (s *Store) CreateAccount(ctx context.Context, bankCode string, balance money.Cents) (int, error) {
	var number int
	err := s.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		next, err := NextAccountNumber(ctx, tx)
		if err != nil {
			return err
		}
		if next > 99999 {
			return ErrLimitReached
		}
		if err := InsertAccount(ctx, tx, next, bankCode, balance); err != nil {
			return err
		}
		if balance > 0 {
			if _, err := AppendLedger(ctx, tx, next, bankCode, balance, KindInitialDeposit, "initial deposit"); err != nil {
				return err
			}
		}
		number = next
		return nil
	})
	return number, err
}

// GetBalance returns the balance of an active account.
func (s *Store) GetBalance(ctx context.Context, number int, bankCode string) (money.Cents, error) {
	acc, err := GetAccount(ctx, s.pool, number, bankCode)
	if err != nil {
		return 0, err
	}
	if !acc.IsActive {
		return 0, ErrInactive
	}
	return acc.Balance, nil
}

// Account returns the full row, for callers that need the active flag too.
func (s *Store) Account(ctx context.Context, number int, bankCode string) (Account, error) {
	return GetAccount(ctx, s.pool, number, bankCode)
}

// ErrInactive flags an account that exists but rejected a mutation because
// is_active is false; handlers translate it to one of two wire messages
// depending on the opcode (spec.md §4.D).
var ErrInactive = noteInactive{}

type noteInactive struct{}

func (noteInactive) Error() string { return "account is not active" }

// Withdraw subtracts amount from an active account's balance, failing with
// ErrInsufficientFunds if the balance would go negative.
var ErrInsufficientFunds = insufficientFunds{}

type insufficientFunds struct{}

func (insufficientFunds) Error() string { return "insufficient funds" }

func (s *Store) Withdraw(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	var newBalance money.Cents
	err := s.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		acc, err := GetAccountForUpdate(ctx, tx, number, bankCode)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return ErrInactive
		}
		if acc.Balance < amount {
			return ErrInsufficientFunds
		}
		newBalance = acc.Balance - amount
		if err := UpdateBalance(ctx, tx, number, bankCode, newBalance); err != nil {
			return err
		}
		_, err = AppendLedger(ctx, tx, number, bankCode, amount, KindWithdrawal, "withdrawal")
		return err
	})
	return newBalance, err
}

// DepositActive adds amount to an active account's balance and records a
// DEPOSIT ledger entry, failing with ErrInactive when is_active is false.
// The active check lives here rather than in the deposit handler, the same
// way Withdraw carries its own check.
func (s *Store) DepositActive(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	var newBalance money.Cents
	err := s.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		acc, err := GetAccountForUpdate(ctx, tx, number, bankCode)
		if err != nil {
			return err
		}
		if !acc.IsActive {
			return ErrInactive
		}
		newBalance = acc.Balance + amount
		if err := UpdateBalance(ctx, tx, number, bankCode, newBalance); err != nil {
			return err
		}
		_, err = AppendLedger(ctx, tx, number, bankCode, amount, KindDeposit, "deposit")
		return err
	})
	return newBalance, err
}

// RemoveAccount deletes an account, but only if its balance is exactly
// zero. The balance check and the delete run inside one transaction, with
// the row locked by GetAccountForUpdate.
func (s *Store) RemoveAccount(ctx context.Context, number int, bankCode string) error {
	return s.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		acc, err := GetAccountForUpdate(ctx, tx, number, bankCode)
		if err != nil {
			return err
		}
		if acc.Balance > 0 {
			return ErrFundsRemain
		}
		return DeleteAccount(ctx, tx, number, bankCode)
	})
}

var ErrFundsRemain = fundsRemain{}

type fundsRemain struct{}

func (fundsRemain) Error() string { return "account still holds funds" }

// SumBalances and CountAccounts read outside a transaction: they are
// read-only aggregates with no cross-row invariant to protect (spec.md
// §4.D's bank_amount / bank_number_of_clients).
func (s *Store) SumBalances(ctx context.Context) (money.Cents, error) {
	return SumBalances(ctx, s.pool)
}

func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	return CountAccounts(ctx, s.pool)
}

func (s *Store) UpsertKnownBank(ctx context.Context, bankCode, ip string, port int) error {
	return UpsertKnownBank(ctx, s.pool, bankCode, ip, port)
}
