package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2pbank/internal/money"
	"p2pbank/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store, keyed the same way
// the real one is: (account_number, bank_code).
type fakeStore struct {
	accounts map[int]store.Account
	next     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[int]store.Account), next: 10001}
}

func (f *fakeStore) CreateAccount(ctx context.Context, bankCode string, balance money.Cents) (int, error) {
	if f.next > 99999 {
		return 0, store.ErrLimitReached
	}
	number := f.next
	f.next++
	f.accounts[number] = store.Account{Number: number, BankCode: bankCode, Balance: balance, IsActive: true}
	return number, nil
}

func (f *fakeStore) Account(ctx context.Context, number int, bankCode string) (store.Account, error) {
	acc, ok := f.accounts[number]
	if !ok || acc.BankCode != bankCode {
		return store.Account{}, store.ErrAccountNotFound
	}
	return acc, nil
}

func (f *fakeStore) DepositActive(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	acc, err := f.Account(ctx, number, bankCode)
	if err != nil {
		return 0, err
	}
	if !acc.IsActive {
		return 0, store.ErrInactive
	}
	acc.Balance += amount
	f.accounts[number] = acc
	return acc.Balance, nil
}

func (f *fakeStore) Withdraw(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error) {
	acc, err := f.Account(ctx, number, bankCode)
	if err != nil {
		return 0, err
	}
	if !acc.IsActive {
		return 0, store.ErrInactive
	}
	if acc.Balance < amount {
		return 0, store.ErrInsufficientFunds
	}
	acc.Balance -= amount
	f.accounts[number] = acc
	return acc.Balance, nil
}

func (f *fakeStore) RemoveAccount(ctx context.Context, number int, bankCode string) error {
	acc, err := f.Account(ctx, number, bankCode)
	if err != nil {
		return err
	}
	if acc.Balance > 0 {
		return store.ErrFundsRemain
	}
	delete(f.accounts, number)
	return nil
}

func (f *fakeStore) SumBalances(ctx context.Context) (money.Cents, error) {
	var sum money.Cents
	for _, acc := range f.accounts {
		sum += acc.Balance
	}
	return sum, nil
}

func (f *fakeStore) CountAccounts(ctx context.Context) (int, error) {
	return len(f.accounts), nil
}

type fakeBank struct{ code string }

func (b fakeBank) Get() string { return b.code }

type fakeProxy struct {
	reply string
	err   error
}

func (p *fakeProxy) Forward(ctx context.Context, opcode, accountInfo string, amount *string, targetBank string) (string, error) {
	return p.reply, p.err
}

func newHandlers() (*Handlers, *fakeStore) {
	fs := newFakeStore()
	h := &Handlers{
		Store: fs,
		Proxy: &fakeProxy{},
		Bank:  fakeBank{code: "192.168.1.7"},
	}
	return h, fs
}

func TestGetBankCode(t *testing.T) {
	h, _ := newHandlers()
	result, err := h.GetBankCode(context.Background(), nil, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.7", *result)
}

func TestCreateAccountDefaultsToZero(t *testing.T) {
	h, _ := newHandlers()
	result, err := h.CreateAccount(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "10001/192.168.1.7", *result)
}

func TestCreateAccountWithInitialBalance(t *testing.T) {
	h, fs := newHandlers()
	result, err := h.CreateAccount(context.Background(), []string{"500"}, "")
	require.NoError(t, err)
	assert.Equal(t, "10001/192.168.1.7", *result)
	assert.Equal(t, money.Cents(50000), fs.accounts[10001].Balance)
}

func TestCreateAccountRejectsNegativeBalance(t *testing.T) {
	h, _ := newHandlers()
	_, err := h.CreateAccount(context.Background(), []string{"-5"}, "")
	assert.EqualError(t, err, "Initial balance cannot be negative")
}

func TestCreateAccountRejectsGarbageBalance(t *testing.T) {
	h, _ := newHandlers()
	_, err := h.CreateAccount(context.Background(), []string{"not-a-number"}, "")
	assert.EqualError(t, err, "Invalid initial balance")
}

func TestCreateAccountLimitReached(t *testing.T) {
	h, fs := newHandlers()
	fs.next = 100000
	_, err := h.CreateAccount(context.Background(), nil, "")
	assert.EqualError(t, err, "Bank account limit reached")
}

func TestDepositRequiresSlash(t *testing.T) {
	h, _ := newHandlers()
	_, err := h.Deposit(context.Background(), []string{"10001", "100"}, "")
	assert.EqualError(t, err, "Invalid account format. Use: account_number/bank_code")
}

func TestDepositAndWithdrawRoundTrip(t *testing.T) {
	h, fs := newHandlers()
	created, err := h.CreateAccount(context.Background(), nil, "")
	require.NoError(t, err)
	_ = created

	_, err = h.Deposit(context.Background(), []string{"10001/192.168.1.7", "100"}, "")
	require.NoError(t, err)

	_, err = h.Withdraw(context.Background(), []string{"10001/192.168.1.7", "30"}, "")
	require.NoError(t, err)

	balance, err := h.GetBalance(context.Background(), []string{"10001/192.168.1.7"}, "")
	require.NoError(t, err)
	assert.Equal(t, "70.00", *balance)
	assert.Equal(t, money.Cents(7000), fs.accounts[10001].Balance)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), nil, "")
	_, err := h.Deposit(context.Background(), []string{"10001/192.168.1.7", "0"}, "")
	assert.EqualError(t, err, "Amount must be positive")
}

func TestDepositRejectsOverMaximum(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), nil, "")
	_, err := h.Deposit(context.Background(), []string{"10001/192.168.1.7", "1000000.01"}, "")
	assert.EqualError(t, err, "Maximum deposit amount is $1,000,000")
}

func TestDepositAtMaximumSucceeds(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), nil, "")
	_, err := h.Deposit(context.Background(), []string{"10001/192.168.1.7", "1000000"}, "")
	assert.NoError(t, err)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), []string{"70"}, "")
	_, err := h.Withdraw(context.Background(), []string{"10001/192.168.1.7", "1000"}, "")
	assert.EqualError(t, err, "Insufficient funds")
}

func TestRemoveAccountRejectsNonZeroBalance(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), []string{"70"}, "")
	_, err := h.RemoveAccount(context.Background(), []string{"10001/192.168.1.7"}, "")
	assert.EqualError(t, err, "Cannot delete bank account containing funds")
}

func TestRemoveAccountThenGetBalanceNotFound(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), nil, "")

	_, err := h.RemoveAccount(context.Background(), []string{"10001/192.168.1.7"}, "")
	require.NoError(t, err)

	_, err = h.GetBalance(context.Background(), []string{"10001/192.168.1.7"}, "")
	assert.EqualError(t, err, "Account not found or inactive")
}

func TestBankAmountAndNumberOfClients(t *testing.T) {
	h, _ := newHandlers()
	_, _ = h.CreateAccount(context.Background(), []string{"500"}, "")
	_, _ = h.CreateAccount(context.Background(), []string{"250"}, "")

	amount, err := h.BankAmount(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "750.00", *amount)

	count, err := h.BankNumberOfClients(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "2", *count)
}

func TestDepositDelegatesToProxyForRemoteBank(t *testing.T) {
	h, _ := newHandlers()
	proxy := &fakeProxy{reply: "AD"}
	h.Proxy = proxy

	result, err := h.Deposit(context.Background(), []string{"10001/10.0.0.9", "100"}, "")
	require.NoError(t, err)
	assert.Equal(t, "AD", *result)
}
