// Package protocol is the single authority on wire syntax for the
// line-oriented banking protocol: parsing one request line into an opcode
// and its arguments, and formatting one response line back. Both directions
// are pure, side-effect-free functions.
package protocol

import "strings"

// Parse splits a request line on whitespace into an upper-cased opcode and
// its positional arguments. An empty or all-whitespace line yields ("", nil).
func Parse(line string) (opcode string, args []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToUpper(fields[0]), fields[1:]
}

// Format renders a response line for opcode. If err is non-nil it wins and
// produces "ER <message>"; otherwise a nil result yields a bare opcode line
// and a non-nil result yields "<opcode> <result>".
func Format(opcode string, result *string, err error) string {
	if err != nil {
		return "ER " + err.Error() + "\n"
	}
	if result == nil {
		return opcode + "\n"
	}
	return opcode + " " + *result + "\n"
}
