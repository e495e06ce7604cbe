package output

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard copies text to a clipboard.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard uses the operating system clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
