// Package wayland owns the Wayland clipboard selection through the
// wlr-data-control protocol, so one copy can be offered under several MIME
// types at once. Only the handful of requests needed for that are spoken.
package wayland

import (
	"encoding/binary"
	"fmt"
)

var order = binary.LittleEndian

const headerSize = 8

// message is one decoded event, with the file descriptor that arrived
// alongside it, or -1.
type message struct {
	sender uint32
	opcode uint16
	body   []byte
	fd     int
}

// args accumulates the argument block of a request.
type args []byte

func (a args) uint(v uint32) args {
	return order.AppendUint32(a, v)
}

// str appends a string argument: length including the NUL terminator,
// bytes, NUL, then padding to a 4-byte boundary.
func (a args) str(s string) args {
	n := len(s) + 1
	a = order.AppendUint32(a, uint32(n))
	a = append(a, s...)
	return append(a, make([]byte, (n+3)&^3-len(s))...)
}

func frame(object uint32, opcode uint16, body args) []byte {
	size := headerSize + len(body)
	out := make([]byte, 0, size)
	out = order.AppendUint32(out, object)
	out = order.AppendUint32(out, uint32(size)<<16|uint32(opcode))
	return append(out, body...)
}

// splitFrame pulls one complete message off the front of buf.
func splitFrame(buf []byte) (msg message, rest []byte, ok bool) {
	if len(buf) < headerSize {
		return message{}, buf, false
	}
	word := order.Uint32(buf[4:8])
	size := int(word >> 16)
	if size < headerSize || len(buf) < size {
		return message{}, buf, false
	}
	msg = message{
		sender: order.Uint32(buf[0:4]),
		opcode: uint16(word),
		body:   append([]byte(nil), buf[headerSize:size]...),
		fd:     -1,
	}
	return msg, buf[size:], true
}

// readString decodes a string argument and returns the remaining bytes.
func readString(b []byte) (string, []byte, error) {
	if len(b) < 4 {
		return "", b, fmt.Errorf("wayland: truncated string length")
	}
	n := int(order.Uint32(b))
	b = b[4:]
	if n == 0 {
		return "", b, nil
	}
	padded := (n + 3) &^ 3
	if len(b) < padded {
		return "", b, fmt.Errorf("wayland: truncated string")
	}
	return string(b[:n-1]), b[padded:], nil
}
