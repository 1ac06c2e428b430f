// Package domain implements the eight opcode handlers of spec.md §4.D: the
// account lifecycle and balance operations, their invariants, and the exact
// error strings the wire protocol contracts on.
package domain

// DomainError is a handler-raised failure whose message is the literal text
// sent back to the client as "ER <message>" (spec.md §7). It is distinct
// from a store or I/O failure, which the dispatcher instead turns into the
// generic "Command incomplete".
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newError(message string) error {
	return &DomainError{Message: message}
}

// The literal error strings are part of the external contract (spec.md §7)
// and must never be reworded.
var (
	errInvalidAccountFormat      = newError("Invalid account format. Use: account_number/bank_code")
	errInvalidAccountNumber      = newError("Invalid account number")
	errInvalidNumberOrAmount     = newError("Invalid account number or amount format")
	errInvalidInitialBalance     = newError("Invalid initial balance")
	errInitialBalanceNeg         = newError("Initial balance cannot be negative")
	errAmountNotPositive         = newError("Amount must be positive")
	errMaxDeposit                = newError("Maximum deposit amount is $1,000,000")
	errMaxWithdrawal             = newError("Maximum withdrawal amount is $1,000,000")
	errLimitReached              = newError("Bank account limit reached")
	errAccountNotFound           = newError("Account not found")
	errAccountNotFoundOrInactive = newError("Account not found or inactive")
	errAccountInactive           = newError("Account is not active")
	errInsufficientFunds         = newError("Insufficient funds")
	errCannotDeleteFunded        = newError("Cannot delete bank account containing funds")
)

func errCannotConnect(target string) error {
	return newError("Cannot connect to bank " + target)
}
