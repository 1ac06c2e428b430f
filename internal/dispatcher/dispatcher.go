// Package dispatcher maps a parsed opcode to its handler and turns the
// handler's outcome into a response line, per spec.md §4.C.
package dispatcher

import (
	"context"
	"errors"
	"time"

	"p2pbank/internal/domain"
	"p2pbank/internal/logging"
	"p2pbank/internal/metrics"
	"p2pbank/internal/protocol"
)

// HandlerFunc is the shape every opcode handler satisfies: positional args
// (the tokens after the opcode) plus the client's peer IP, a textual
// result (nil when the opcode carries none on success), and an error.
type HandlerFunc func(ctx context.Context, args []string, peerIP string) (*string, error)

// Dispatcher owns the static opcode -> handler table. It is built once at
// startup from a domain.Handlers and never mutated afterwards.
type Dispatcher struct {
	table map[string]HandlerFunc
}

// New builds the fixed command table described in spec.md §4.C. A static
// map, not reflection, matching the "dynamic dispatch" design note.
func New(h *domain.Handlers) *Dispatcher {
	return &Dispatcher{
		table: map[string]HandlerFunc{
			"BC": h.GetBankCode,
			"AC": h.CreateAccount,
			"AD": h.Deposit,
			"AW": h.Withdraw,
			"AB": h.GetBalance,
			"AR": h.RemoveAccount,
			"BA": h.BankAmount,
			"BN": h.BankNumberOfClients,
		},
	}
}

// Dispatch runs one parsed request and returns the exact line to write
// back to the client, newline included.
func (d *Dispatcher) Dispatch(ctx context.Context, opcode string, args []string, peerIP string) string {
	if opcode == "" {
		return protocol.Format("", nil, errors.New("Unknown command"))
	}

	handler, ok := d.table[opcode]
	if !ok {
		return protocol.Format(opcode, nil, errors.New("Unknown command"))
	}

	observer := metrics.CommandDuration.WithLabelValues(opcode)
	start := time.Now()
	result, err := handler(ctx, args, peerIP)
	observer.Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.CommandsTotal.WithLabelValues(opcode, "ok").Inc()
		return protocol.Format(opcode, result, nil)
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		metrics.CommandsTotal.WithLabelValues(opcode, "error").Inc()
		return protocol.Format(opcode, nil, domainErr)
	}

	logging.Error("command failed", err, map[string]interface{}{"opcode": opcode})
	metrics.CommandsTotal.WithLabelValues(opcode, "error").Inc()
	return protocol.Format(opcode, nil, errors.New("Command incomplete"))
}
