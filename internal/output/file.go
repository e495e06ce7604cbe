package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the name offered for prompt downloads.
const DefaultFileName = "generated_prompt.txt"

// WriteFile writes prompt to path exactly as generated. A directory path gets
// DefaultFileName appended. It returns the path written.
func WriteFile(path, prompt string) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(prompt), 0644); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	return path, nil
}
