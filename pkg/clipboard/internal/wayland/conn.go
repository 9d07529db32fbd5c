//go:build linux

package wayland

import (
	"errors"
	"fmt"
	"syscall"
)

var errClosed = errors.New("wayland: compositor closed the connection")

// conn is a client socket to the compositor. Events are buffered because
// one read may carry several of them, and descriptors passed with
// SCM_RIGHTS are queued and attached to events in arrival order.
type conn struct {
	fd  int
	in  []byte
	fds []int
}

func dial(path string) (*conn, error) {
	fd, err := syscall.Socket(syscall.AF_UNIX, syscall.SOCK_STREAM|syscall.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	if err := syscall.Connect(fd, &syscall.SockaddrUnix{Name: path}); err != nil {
		syscall.Close(fd) //nolint:errcheck
		return nil, err
	}
	return &conn{fd: fd}, nil
}

func (c *conn) Close() error {
	for _, fd := range c.fds {
		syscall.Close(fd) //nolint:errcheck
	}
	return syscall.Close(c.fd)
}

func (c *conn) request(object uint32, opcode uint16, body args) error {
	_, err := syscall.Write(c.fd, frame(object, opcode, body))
	if err != nil {
		return fmt.Errorf("wayland: request %d.%d: %w", object, opcode, err)
	}
	return nil
}

func (c *conn) next() (message, error) {
	for {
		if msg, rest, ok := splitFrame(c.in); ok {
			c.in = rest
			if len(c.fds) > 0 {
				msg.fd, c.fds = c.fds[0], c.fds[1:]
			}
			return msg, nil
		}
		if err := c.fill(); err != nil {
			return message{}, err
		}
	}
}

func (c *conn) fill() error {
	buf := make([]byte, 4096)
	oob := make([]byte, syscall.CmsgSpace(8*4))
	n, oobn, _, _, err := syscall.Recvmsg(c.fd, buf, oob, 0)
	if err != nil {
		return fmt.Errorf("wayland: recvmsg: %w", err)
	}
	if n == 0 {
		return errClosed
	}
	c.in = append(c.in, buf[:n]...)
	if oobn == 0 {
		return nil
	}
	cmsgs, err := syscall.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil
	}
	for i := range cmsgs {
		if fds, err := syscall.ParseUnixRights(&cmsgs[i]); err == nil {
			c.fds = append(c.fds, fds...)
		}
	}
	return nil
}

// discard closes any descriptor attached to msg.
func discard(msg message) {
	if msg.fd >= 0 {
		syscall.Close(msg.fd) //nolint:errcheck
	}
}
