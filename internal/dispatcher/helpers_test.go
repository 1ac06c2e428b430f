package dispatcher

import (
	"context"

	"p2pbank/internal/money"
	"p2pbank/internal/store"
)

// noopStore and noopProxy stand in for domain.Store/domain.Proxy in tests
// that only exercise dispatch plumbing (unknown opcode, error formatting),
// not handler business logic, which belongs to the domain package's own
// tests.
type noopStore struct{}

func (noopStore) CreateAccount(ctx context.Context, bankCode string, balance money.Cents) (int, error) {
	return 10001, nil
}

func (noopStore) Account(ctx context.Context, number int, bankCode string) (store.Account, error) {
	return store.Account{}, store.ErrAccountNotFound
}

func (noopStore) DepositActive(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	return 0, nil
}

func (noopStore) Withdraw(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	return 0, nil
}

func (noopStore) RemoveAccount(ctx context.Context, number int, bankCode string) error {
	return nil
}

func (noopStore) SumBalances(ctx context.Context) (money.Cents, error) {
	return 0, nil
}

func (noopStore) CountAccounts(ctx context.Context) (int, error) {
	return 0, nil
}

type noopProxy struct{}

func (noopProxy) Forward(ctx context.Context, opcode, accountInfo string, amount *string, targetBank string) (string, error) {
	return "", nil
}
