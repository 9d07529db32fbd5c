//go:build linux

package wayland

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// Object IDs are allocated by the client; wl_display is always 1.
const (
	objDisplay uint32 = iota + 1
	objRegistry
	objSync
	objSeat
	objManager
	objSource
	objDevice
	objConfirm
)

const (
	ifaceSeat    = "wl_seat"
	ifaceManager = "zwlr_data_control_manager_v1"
)

// Request and event opcodes used below.
const (
	displaySync        = 0
	displayGetRegistry = 1
	registryBind       = 0
	registryGlobal     = 0
	callbackDone       = 0
	managerNewSource   = 0
	managerGetDevice   = 1
	sourceOffer        = 0
	deviceSetSelection = 0
	sourceSend         = 0
	sourceCancelled    = 1
)

// Serve takes the clipboard selection, offering each key of offers as a
// MIME type, and answers paste requests until another client replaces the
// selection or the compositor goes away.
func Serve(offers map[string][]byte) error {
	path, err := socketPath()
	if err != nil {
		return err
	}
	c, err := dial(path)
	if err != nil {
		return fmt.Errorf("wayland: connect %s: %w", path, err)
	}
	defer c.Close()

	globals, err := listGlobals(c)
	if err != nil {
		return err
	}
	seat, ok := globals[ifaceSeat]
	if !ok {
		return fmt.Errorf("wayland: no %s advertised", ifaceSeat)
	}
	manager, ok := globals[ifaceManager]
	if !ok {
		return fmt.Errorf("wayland: no %s advertised (compositor lacks wlr-data-control)", ifaceManager)
	}

	if err := claim(c, seat, manager, mimeOrder(offers)); err != nil {
		return err
	}
	return answer(c, offers)
}

func socketPath() (string, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("wayland: XDG_RUNTIME_DIR not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	if filepath.IsAbs(display) {
		return display, nil
	}
	return filepath.Join(runtimeDir, display), nil
}

// listGlobals returns the registry name of every advertised interface.
func listGlobals(c *conn) (map[string]uint32, error) {
	if err := c.request(objDisplay, displayGetRegistry, args{}.uint(objRegistry)); err != nil {
		return nil, err
	}
	globals := map[string]uint32{}
	err := roundtrip(c, objSync, func(msg message) {
		if msg.sender != objRegistry || msg.opcode != registryGlobal || len(msg.body) < 4 {
			return
		}
		iface, _, err := readString(msg.body[4:])
		if err == nil {
			globals[iface] = order.Uint32(msg.body)
		}
	})
	return globals, err
}

// claim binds the seat and data-control manager, creates a source with the
// given MIME types and makes it the selection.
func claim(c *conn, seat, manager uint32, mimes []string) error {
	steps := []struct {
		object uint32
		opcode uint16
		body   args
	}{
		{objRegistry, registryBind, args{}.uint(seat).str(ifaceSeat).uint(1).uint(objSeat)},
		{objRegistry, registryBind, args{}.uint(manager).str(ifaceManager).uint(2).uint(objManager)},
		{objManager, managerNewSource, args{}.uint(objSource)},
	}
	for _, s := range steps {
		if err := c.request(s.object, s.opcode, s.body); err != nil {
			return err
		}
	}
	for _, mime := range mimes {
		if err := c.request(objSource, sourceOffer, args{}.str(mime)); err != nil {
			return err
		}
	}
	if err := c.request(objManager, managerGetDevice, args{}.uint(objDevice).uint(objSeat)); err != nil {
		return err
	}
	if err := c.request(objDevice, deviceSetSelection, args{}.uint(objSource)); err != nil {
		return err
	}
	return roundtrip(c, objConfirm, nil)
}

// roundtrip sends wl_display.sync on callback and feeds every event that
// arrives before its done event to fn.
func roundtrip(c *conn, callback uint32, fn func(message)) error {
	if err := c.request(objDisplay, displaySync, args{}.uint(callback)); err != nil {
		return err
	}
	for {
		msg, err := c.next()
		if err != nil {
			return err
		}
		discard(msg)
		if msg.sender == callback && msg.opcode == callbackDone {
			return nil
		}
		if fn != nil {
			fn(msg)
		}
	}
}

func answer(c *conn, offers map[string][]byte) error {
	for {
		msg, err := c.next()
		if err != nil {
			// The compositor exiting ends ownership too.
			return nil
		}
		if msg.sender != objSource {
			discard(msg)
			continue
		}
		switch msg.opcode {
		case sourceSend:
			mime, _, _ := readString(msg.body)
			if msg.fd >= 0 {
				writeAll(msg.fd, offers[mime])
			}
			discard(msg)
		case sourceCancelled:
			discard(msg)
			return nil
		}
	}
}

func writeAll(fd int, data []byte) {
	for len(data) > 0 {
		n, err := syscall.Write(fd, data)
		if err != nil || n <= 0 {
			return
		}
		data = data[n:]
	}
}

// mimeOrder offers text/html first; some targets take the first match.
func mimeOrder(offers map[string][]byte) []string {
	mimes := make([]string, 0, len(offers))
	for m := range offers {
		mimes = append(mimes, m)
	}
	sort.Slice(mimes, func(i, j int) bool {
		if (mimes[i] == "text/html") != (mimes[j] == "text/html") {
			return mimes[i] == "text/html"
		}
		return mimes[i] < mimes[j]
	})
	return mimes
}
