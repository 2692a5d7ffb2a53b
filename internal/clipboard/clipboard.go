// Package clipboard copies converted pinyin to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("clipboard not available")

// Write copies text to the system clipboard.
func Write(text string) error {
	if !Available() {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}

// Available checks if clipboard functionality is available.
func Available() bool {
	return !clipboard.Unsupported
}
