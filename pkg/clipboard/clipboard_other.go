//go:build !linux

package clipboard

import atotto "github.com/atotto/clipboard"

const ServeCommand = "__clipboard-serve"

type Payload struct {
	HTML  string `json:"html"`
	Plain string `json:"plain"`
}

// WriteMultiFormat writes only the plain text outside Linux.
func WriteMultiFormat(html, plain string) error {
	return atotto.WriteAll(plain)
}

// ServeClipboard has nothing to serve outside Linux.
func ServeClipboard(p Payload) error {
	return nil
}
