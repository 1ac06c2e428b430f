package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These mirror the end-to-end scenarios of spec.md §8 against a fresh
// store, driving handlers directly (the dispatcher's opcode -> handler
// routing and the codec's line framing are covered by their own packages).

func TestScenarioOneCreateDepositQuery(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	number, err := h.CreateAccount(ctx, []string{"500"}, "")
	require.NoError(t, err)
	assert.Equal(t, "10001/192.168.1.7", *number)

	balance, err := h.GetBalance(ctx, []string{"10001/192.168.1.7"}, "")
	require.NoError(t, err)
	assert.Equal(t, "500.00", *balance)

	amount, err := h.BankAmount(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "500.00", *amount)

	count, err := h.BankNumberOfClients(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "1", *count)
}

func TestScenarioTwoDepositThenWithdraw(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	_, err := h.CreateAccount(ctx, nil, "")
	require.NoError(t, err)

	_, err = h.Deposit(ctx, []string{"10001/192.168.1.7", "100"}, "")
	require.NoError(t, err)

	_, err = h.Withdraw(ctx, []string{"10001/192.168.1.7", "30"}, "")
	require.NoError(t, err)

	balance, err := h.GetBalance(ctx, []string{"10001/192.168.1.7"}, "")
	require.NoError(t, err)
	assert.Equal(t, "70.00", *balance)
}

func TestScenarioThreeWithdrawTooMuch(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	_, _ = h.CreateAccount(ctx, []string{"70"}, "")
	_, err := h.Withdraw(ctx, []string{"10001/192.168.1.7", "1000"}, "")
	assert.EqualError(t, err, "Insufficient funds")
}

func TestScenarioFourRemoveAfterDraining(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	_, _ = h.CreateAccount(ctx, []string{"70"}, "")

	_, err := h.RemoveAccount(ctx, []string{"10001/192.168.1.7"}, "")
	assert.EqualError(t, err, "Cannot delete bank account containing funds")

	_, err = h.Withdraw(ctx, []string{"10001/192.168.1.7", "70"}, "")
	require.NoError(t, err)

	_, err = h.RemoveAccount(ctx, []string{"10001/192.168.1.7"}, "")
	require.NoError(t, err)

	_, err = h.GetBalance(ctx, []string{"10001/192.168.1.7"}, "")
	assert.EqualError(t, err, "Account not found or inactive")
}

func TestBoundaryAccountNumberCeiling(t *testing.T) {
	h, fs := newHandlers()
	fs.next = 99999

	number, err := h.CreateAccount(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "99999/192.168.1.7", *number)

	_, err = h.CreateAccount(context.Background(), nil, "")
	assert.EqualError(t, err, "Bank account limit reached")
}

func TestBoundaryRemoveAccountRejectsOneCent(t *testing.T) {
	h, _ := newHandlers()
	ctx := context.Background()

	_, _ = h.CreateAccount(ctx, []string{"0.01"}, "")
	_, err := h.RemoveAccount(ctx, []string{"10001/192.168.1.7"}, "")
	assert.EqualError(t, err, "Cannot delete bank account containing funds")
}
