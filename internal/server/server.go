// Package server implements the line-protocol accept loop and
// per-connection session handler of spec.md §4.F.
package server

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"p2pbank/internal/dispatcher"
	"p2pbank/internal/events"
	"p2pbank/internal/logging"
	"p2pbank/internal/metrics"
	"p2pbank/internal/protocol"
)

const (
	acceptPollInterval = 1 * time.Second
	readBufferSize     = 1024
)

// Config carries the bind address and per-session read timeout.
type Config struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
}

// Server is the node's Stopped -> Running -> Stopping -> Stopped state
// machine. Each accepted connection is handled by its own goroutine; the
// active-connections set is the one piece of shared mutable state the
// server itself owns.
type Server struct {
	cfg        Config
	dispatcher *dispatcher.Dispatcher
	events     events.Publisher

	listener net.Listener
	running  atomic.Bool

	mu    sync.Mutex
	conns map[net.Conn]struct{}

	wg sync.WaitGroup
}

// New builds a Server bound to cfg but not yet listening.
func New(cfg Config, d *dispatcher.Dispatcher, publisher events.Publisher) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	return &Server{
		cfg:        cfg,
		dispatcher: d,
		events:     publisher,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start binds and listens, then runs the accept loop until Stop is called.
// It blocks the calling goroutine; callers typically invoke it in its own
// goroutine from the container.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.running.Store(true)
	s.publish(events.TypeInfo, fmt.Sprintf("Server started on %s", addr))

	tcpLn, isTCP := ln.(*net.TCPListener)

	for s.running.Load() {
		if isTCP {
			_ = tcpLn.SetDeadline(time.Now().Add(acceptPollInterval))
		}
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !s.running.Load() {
				break
			}
			logging.Warn("accept failed", map[string]interface{}{"error": err.Error()})
			continue
		}

		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.wg.Add(1)
		go s.handleSession(conn)
	}

	return nil
}

// Addr returns the bound listener's address, or "" before Start has bound
// one. Useful for tests that bind to port 0 and need the assigned port.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop transitions Running -> Stopping -> Stopped: it closes the listener
// and every tracked connection, then waits for session goroutines to exit.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = make(map[net.Conn]struct{})
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Server) handleSession(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	peerIP := peerIPOf(conn)
	s.trackConn(conn)
	defer s.untrackConn(conn)

	s.publish(events.TypeConnection, "connected "+peerIP)

	buf := make([]byte, readBufferSize)
	for s.running.Load() {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.publish(events.TypeWarning, "Timeout "+peerIP)
			}
			return
		}
		if n == 0 {
			return
		}

		line := strings.TrimSpace(string(buf[:n]))
		if line == "" {
			continue
		}

		s.publish(events.TypeCommand, line)
		opcode, args := protocol.Parse(line)
		resp := s.dispatcher.Dispatch(context.Background(), opcode, args, peerIP)
		s.publish(events.TypeResponse, strings.TrimSuffix(resp, "\n"))

		if _, err := conn.Write([]byte(resp)); err != nil {
			return
		}
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	metrics.ActiveConnections.Inc()
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	metrics.ActiveConnections.Dec()
}

func (s *Server) publish(t events.Type, content string) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.New(t, content))
}

func peerIPOf(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
