// Package proxy implements the forwarder of spec.md §4.E: it recognises a
// non-local target bank and relays the line-protocol request to it
// verbatim, returning the remote response body unchanged.
package proxy

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"p2pbank/internal/events"
	"p2pbank/internal/logging"
	"p2pbank/internal/metrics"
)

const defaultPort = 65525

// KnownBanks is the directory the forwarder refreshes on every successful
// hop, satisfied by the store's composite UpsertKnownBank operation.
type KnownBanks interface {
	UpsertKnownBank(ctx context.Context, bankCode, ip string, port int) error
}

// Forwarder opens a TCP session to a remote bank for each call; it keeps
// no persistent connection, matching spec.md §4.E's "a fresh TCP session"
// loop-prevention argument.
type Forwarder struct {
	Timeout time.Duration
	Banks   KnownBanks
	Events  events.Publisher
}

// New builds a Forwarder with the given per-hop timeout (spec.md default
// 5s when zero).
func New(timeout time.Duration, banks KnownBanks, publisher events.Publisher) *Forwarder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{Timeout: timeout, Banks: banks, Events: publisher}
}

// cannotConnect is the error Forward returns for any network failure. Its
// text matches the domain package's "Cannot connect to bank <target>"
// message; the domain handlers replace it with their own DomainError, which
// the dispatcher sends back as "ER <message>".
type cannotConnect struct {
	target string
}

func (e *cannotConnect) Error() string {
	return "Cannot connect to bank " + e.target
}

// Forward implements domain.Proxy. Every hop is stamped with a uuid.UUID
// purely for log correlation, the same convention the ledger uses for its
// correlation_id column: the id never reaches the wire and has no bearing
// on the relayed request/response.
func (f *Forwarder) Forward(ctx context.Context, opcode, accountInfo string, amount *string, targetBank string) (string, error) {
	hopID := uuid.New()
	ip, port := splitTarget(targetBank)
	addr := net.JoinHostPort(ip, strconv.Itoa(port))

	start := time.Now()
	logging.Debug("proxy hop starting", map[string]interface{}{"hop_id": hopID, "opcode": opcode, "target": targetBank})

	conn, err := net.DialTimeout("tcp", addr, f.Timeout)
	if err != nil {
		f.fail(hopID, targetBank, start, err)
		return "", &cannotConnect{target: targetBank}
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(f.Timeout))

	line := opcode + " " + accountInfo
	if amount != nil {
		line += " " + *amount
	}
	line += "\n"

	if _, err := conn.Write([]byte(line)); err != nil {
		f.fail(hopID, targetBank, start, err)
		return "", &cannotConnect{target: targetBank}
	}

	reader := bufio.NewReader(conn)
	reply, err := reader.ReadString('\n')
	if err != nil && reply == "" {
		f.fail(hopID, targetBank, start, err)
		return "", &cannotConnect{target: targetBank}
	}
	reply = strings.TrimRight(reply, "\r\n")

	if err := f.Banks.UpsertKnownBank(ctx, targetBank, ip, port); err != nil {
		logging.Warn("known bank upsert failed", map[string]interface{}{"hop_id": hopID, "bank": targetBank, "error": err.Error()})
	}

	metrics.ProxyHopsTotal.WithLabelValues("ok").Inc()
	metrics.ProxyHopDuration.Observe(time.Since(start).Seconds())
	logging.Debug("proxy hop completed", map[string]interface{}{"hop_id": hopID, "opcode": opcode, "target": targetBank})
	f.publish(fmt.Sprintf("%s -> %s %s [%s]", opcode, targetBank, accountInfo, hopID))

	return reply, nil
}

func (f *Forwarder) fail(hopID uuid.UUID, target string, start time.Time, cause error) {
	metrics.ProxyHopsTotal.WithLabelValues("error").Inc()
	metrics.ProxyHopDuration.Observe(time.Since(start).Seconds())
	logging.Warn("proxy hop failed", map[string]interface{}{"hop_id": hopID, "target": target, "error": cause.Error()})
	if f.Events != nil {
		f.Events.Publish(events.New(events.TypeWarning, fmt.Sprintf("cannot connect to bank %s [%s]", target, hopID)))
	}
}

func (f *Forwarder) publish(content string) {
	if f.Events == nil {
		return
	}
	f.Events.Publish(events.New(events.TypeProxy, content))
}

// splitTarget parses "ip[:port]" into (ip, port), defaulting to
// defaultPort when no port is given (spec.md §4.E step 1).
func splitTarget(target string) (string, int) {
	ip, portText, ok := strings.Cut(target, ":")
	if !ok {
		return target, defaultPort
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return ip, defaultPort
	}
	return ip, port
}
