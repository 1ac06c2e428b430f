// Package identity determines the node's own bank code: the outward-facing
// IPv4 address it advertises to clients and peers.
package identity

import "net"

const (
	probeAddr  = "8.8.8.8:80"
	fallbackIP = "127.0.0.1"
)

// Resolve opens a UDP "connection" toward probeAddr (no packet is actually
// sent) and reads back the local endpoint the kernel would use to reach it.
// On any failure it falls back to the loopback address rather than erroring,
// since a node with no route out can still serve local clients.
func Resolve() string {
	conn, err := net.Dial("udp", probeAddr)
	if err != nil {
		return fallbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return fallbackIP
	}
	return addr.IP.String()
}
