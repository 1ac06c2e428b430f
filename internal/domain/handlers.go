package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"p2pbank/internal/events"
	"p2pbank/internal/metrics"
	"p2pbank/internal/money"
	"p2pbank/internal/store"
)

const maxTransferCents = 1_000_000 * 100

// Store is the subset of *store.Store a handler needs. It is satisfied
// structurally by the composite operations in internal/store/operations.go;
// handlers depend on this narrow interface rather than the concrete type so
// they can be exercised against a fake in tests.
type Store interface {
	CreateAccount(ctx context.Context, bankCode string, balance money.Cents) (int, error)
	Account(ctx context.Context, number int, bankCode string) (store.Account, error)
	DepositActive(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error)
	Withdraw(ctx context.Context, number int, bankCode string, amount money.Cents) (money.Cents, error)
	RemoveAccount(ctx context.Context, number int, bankCode string) error
	SumBalances(ctx context.Context) (money.Cents, error)
	CountAccounts(ctx context.Context) (int, error)
}

// Proxy relays a request whose target bank is not this node to the
// responsible peer and returns its response body verbatim. amount is the
// raw token as received on the wire (or nil when the opcode carries none),
// so the relayed line is byte-identical to what a direct client would have
// sent — no parse/format round trip through money.Cents.
type Proxy interface {
	Forward(ctx context.Context, opcode, accountInfo string, amount *string, targetBank string) (string, error)
}

// BankCode reports this node's own outward identity, as resolved at
// startup and possibly refreshed afterwards (internal/identity).
type BankCode interface {
	Get() string
}

// Handlers implements the eight opcodes of spec.md §4.D against a Store, a
// Proxy for non-local targets, and this node's own bank code.
type Handlers struct {
	Store  Store
	Proxy  Proxy
	Bank   BankCode
	Events events.Publisher
}

func strPtr(s string) *string { return &s }

func (h *Handlers) publish(t events.Type, content string) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(events.New(t, content))
}

// GetBankCode handles BC.
func (h *Handlers) GetBankCode(ctx context.Context, args []string, peerIP string) (*string, error) {
	return strPtr(h.Bank.Get()), nil
}

// CreateAccount handles AC [initial_balance].
func (h *Handlers) CreateAccount(ctx context.Context, args []string, peerIP string) (*string, error) {
	balance := money.Cents(0)
	if len(args) > 0 && args[0] != "" {
		parsed, err := money.Parse(args[0])
		if err != nil {
			return nil, errInvalidInitialBalance
		}
		balance = parsed
	}
	if balance < 0 {
		return nil, errInitialBalanceNeg
	}

	bank := h.Bank.Get()
	number, err := h.Store.CreateAccount(ctx, bank, balance)
	if err != nil {
		if err == store.ErrLimitReached {
			return nil, errLimitReached
		}
		return nil, err
	}

	metrics.AccountBalances.Observe(float64(balance))
	h.publish(events.TypeAccount, fmt.Sprintf("created %d/%s balance=%s", number, bank, balance))
	return strPtr(fmt.Sprintf("%d/%s", number, bank)), nil
}

// splitAccountInfo requires a "/" and returns (numberText, bankCode).
func splitAccountInfo(accountInfo string) (string, string, error) {
	numberText, bank, ok := strings.Cut(accountInfo, "/")
	if !ok || numberText == "" || bank == "" {
		return "", "", errInvalidAccountFormat
	}
	return numberText, bank, nil
}

// Deposit handles AD account_info amount.
func (h *Handlers) Deposit(ctx context.Context, args []string, peerIP string) (*string, error) {
	if len(args) < 2 {
		return nil, errInvalidAccountFormat
	}
	accountInfo, amountText := args[0], args[1]

	numberText, bank, err := splitAccountInfo(accountInfo)
	if err != nil {
		return nil, err
	}

	if bank != h.Bank.Get() {
		reply, err := h.Proxy.Forward(ctx, "AD", accountInfo, &amountText, bank)
		if err != nil {
			return nil, errCannotConnect(bank)
		}
		return strPtr(reply), nil
	}

	number, amount, err := parseNumberAndAmount(numberText, amountText)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, errAmountNotPositive
	}
	if amount > maxTransferCents {
		return nil, errMaxDeposit
	}

	newBalance, err := h.Store.DepositActive(ctx, number, bank, amount)
	if err != nil {
		return nil, translateMutationError(err)
	}

	metrics.AccountBalances.Observe(float64(newBalance))
	h.publish(events.TypeTransaction, fmt.Sprintf("deposit %s -> %d/%s", amount, number, bank))
	return nil, nil
}

// Withdraw handles AW account_info amount.
func (h *Handlers) Withdraw(ctx context.Context, args []string, peerIP string) (*string, error) {
	if len(args) < 2 {
		return nil, errInvalidAccountFormat
	}
	accountInfo, amountText := args[0], args[1]

	numberText, bank, err := splitAccountInfo(accountInfo)
	if err != nil {
		return nil, err
	}

	if bank != h.Bank.Get() {
		reply, err := h.Proxy.Forward(ctx, "AW", accountInfo, &amountText, bank)
		if err != nil {
			return nil, errCannotConnect(bank)
		}
		return strPtr(reply), nil
	}

	number, amount, err := parseNumberAndAmount(numberText, amountText)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, errAmountNotPositive
	}
	if amount > maxTransferCents {
		return nil, errMaxWithdrawal
	}

	newBalance, err := h.Store.Withdraw(ctx, number, bank, amount)
	if err != nil {
		if err == store.ErrInsufficientFunds {
			return nil, errInsufficientFunds
		}
		return nil, translateMutationError(err)
	}

	metrics.AccountBalances.Observe(float64(newBalance))
	h.publish(events.TypeTransaction, fmt.Sprintf("withdraw %s <- %d/%s", amount, number, bank))
	return nil, nil
}

// GetBalance handles AB account_info.
func (h *Handlers) GetBalance(ctx context.Context, args []string, peerIP string) (*string, error) {
	if len(args) < 1 {
		return nil, errInvalidAccountFormat
	}
	accountInfo := args[0]

	numberText, bank, err := splitAccountInfo(accountInfo)
	if err != nil {
		return nil, err
	}

	if bank != h.Bank.Get() {
		reply, err := h.Proxy.Forward(ctx, "AB", accountInfo, nil, bank)
		if err != nil {
			return nil, errCannotConnect(bank)
		}
		return strPtr(reply), nil
	}

	number, err := strconv.Atoi(numberText)
	if err != nil {
		return nil, errInvalidAccountNumber
	}

	acc, err := h.Store.Account(ctx, number, bank)
	if err != nil {
		if err == store.ErrAccountNotFound {
			return nil, errAccountNotFoundOrInactive
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, errAccountNotFoundOrInactive
	}

	return strPtr(acc.Balance.String()), nil
}

// RemoveAccount handles AR account_info.
func (h *Handlers) RemoveAccount(ctx context.Context, args []string, peerIP string) (*string, error) {
	if len(args) < 1 {
		return nil, errInvalidAccountFormat
	}
	accountInfo := args[0]

	numberText, bank, err := splitAccountInfo(accountInfo)
	if err != nil {
		return nil, err
	}

	if bank != h.Bank.Get() {
		reply, err := h.Proxy.Forward(ctx, "AR", accountInfo, nil, bank)
		if err != nil {
			return nil, errCannotConnect(bank)
		}
		return strPtr(reply), nil
	}

	number, err := strconv.Atoi(numberText)
	if err != nil {
		return nil, errInvalidAccountNumber
	}

	if err := h.Store.RemoveAccount(ctx, number, bank); err != nil {
		if err == store.ErrAccountNotFound {
			return nil, errAccountNotFound
		}
		if err == store.ErrFundsRemain {
			return nil, errCannotDeleteFunded
		}
		return nil, translateMutationError(err)
	}

	h.publish(events.TypeAccount, fmt.Sprintf("removed %d/%s", number, bank))
	return nil, nil
}

// BankAmount handles BA.
func (h *Handlers) BankAmount(ctx context.Context, args []string, peerIP string) (*string, error) {
	sum, err := h.Store.SumBalances(ctx)
	if err != nil {
		return nil, err
	}
	return strPtr(sum.String()), nil
}

// BankNumberOfClients handles BN.
func (h *Handlers) BankNumberOfClients(ctx context.Context, args []string, peerIP string) (*string, error) {
	count, err := h.Store.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return strPtr(strconv.Itoa(count)), nil
}

func parseNumberAndAmount(numberText, amountText string) (int, money.Cents, error) {
	number, errN := strconv.Atoi(numberText)
	amount, errA := money.Parse(amountText)
	if errN != nil || errA != nil {
		return 0, 0, errInvalidNumberOrAmount
	}
	return number, amount, nil
}

// translateMutationError maps store sentinels shared by deposit/withdraw
// into their wire error, leaving anything else (a genuine store failure)
// untouched so the dispatcher reports it as "Command incomplete" rather
// than a domain rule violation.
func translateMutationError(err error) error {
	switch err {
	case store.ErrAccountNotFound:
		return errAccountNotFound
	case store.ErrInactive:
		return errAccountInactive
	default:
		return err
	}
}
