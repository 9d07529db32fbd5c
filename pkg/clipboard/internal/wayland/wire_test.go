package wayland

import (
	"bytes"
	"testing"
)

func TestArgsString(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"abc", []byte{4, 0, 0, 0, 'a', 'b', 'c', 0}},
		{"abcd", []byte{5, 0, 0, 0, 'a', 'b', 'c', 'd', 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		got := args{}.str(tt.in)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("str(%q) = %v, want %v", tt.in, got, tt.want)
		}
		s, rest, err := readString(got)
		if err != nil {
			t.Fatalf("readString(%v) error: %v", got, err)
		}
		if s != tt.in || len(rest) != 0 {
			t.Errorf("readString round trip = %q (rest %d), want %q", s, len(rest), tt.in)
		}
	}
}

func TestFrameSplit(t *testing.T) {
	buf := append(frame(6, 1, args{}.uint(42)), frame(7, 0, nil)...)
	buf = append(buf, 0xff) // partial next header

	msg, rest, ok := splitFrame(buf)
	if !ok {
		t.Fatal("splitFrame() did not find the first message")
	}
	if msg.sender != 6 || msg.opcode != 1 || order.Uint32(msg.body) != 42 || msg.fd != -1 {
		t.Errorf("first message = %+v", msg)
	}

	msg, rest, ok = splitFrame(rest)
	if !ok || msg.sender != 7 || len(msg.body) != 0 {
		t.Errorf("second message = %+v, ok=%v", msg, ok)
	}

	if _, _, ok := splitFrame(rest); ok {
		t.Error("splitFrame() accepted a partial header")
	}
}

func TestReadStringTruncated(t *testing.T) {
	if _, _, err := readString([]byte{1, 0}); err == nil {
		t.Error("expected error for truncated length")
	}
	if _, _, err := readString([]byte{9, 0, 0, 0, 'a'}); err == nil {
		t.Error("expected error for truncated data")
	}
}
