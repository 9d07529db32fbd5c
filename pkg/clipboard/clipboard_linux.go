//go:build linux

package clipboard

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"syscall"

	"clipdata/pkg/clipboard/internal/wayland"

	atotto "github.com/atotto/clipboard"
)

// ServeCommand is the hidden subcommand the detached clipboard owner runs.
const ServeCommand = "__clipboard-serve"

// Payload is what the parent hands the clipboard owner on stdin.
type Payload struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
}

// WriteMultiFormat puts a table on the clipboard as HTML and as plain
// delimited text. Under Wayland a detached copy of this binary keeps
// ownership of the selection and answers paste requests; under X11 only
// the plain text is written.
func WriteMultiFormat(html, plain string) error {
	if os.Getenv("WAYLAND_DISPLAY") == "" || html == "" {
		return atotto.WriteAll(plain)
	}
	return spawnOwner(Payload{HTML: html, Plain: plain})
}

func spawnOwner(p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	cmd := exec.Command(exe, ServeCommand)
	cmd.Stdin = bytes.NewReader(data)
	// New session so the owner outlives this process.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}

// ServeClipboard runs the Wayland selection owner until another client
// takes the clipboard.
func ServeClipboard(p Payload) error {
	return wayland.Serve(mimeTypes(p))
}

func mimeTypes(p Payload) map[string][]byte {
	plain := []byte(p.Plain)
	return map[string][]byte{
		"text/html":                 []byte(p.HTML),
		"text/tab-separated-values": plain,
		"text/plain;charset=utf-8":  plain,
		"text/plain":                plain,
		"UTF8_STRING":               plain,
		"STRING":                    plain,
	}
}
