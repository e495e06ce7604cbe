// Package output delivers generated prompts: the last-result cache, file download,
// clipboard, the JSONL audit trail, Slack sharing and terminal rendering.
package output

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

// Generation is one generated prompt together with the parameters it came from.
type Generation struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Params    promptbuild.Params    `json:"params"`
	Prompt    string                `json:"prompt"`
	Sections  []promptbuild.Section `json:"sections,omitempty"`
}

// NewGeneration stamps a freshly assembled prompt with an id and time.
func NewGeneration(p promptbuild.Params, prompt string, sections []promptbuild.Section) Generation {
	return Generation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Params:    p,
		Prompt:    prompt,
		Sections:  sections,
	}
}

// Cache holds the most recent generation. Each Store replaces the previous entry.
type Cache struct {
	mu   sync.RWMutex
	last *Generation
}

// Store replaces the cached generation.
func (c *Cache) Store(g Generation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &g
}

// Last returns the cached generation, if any.
func (c *Cache) Last() (Generation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Generation{}, false
	}
	return *c.last, true
}

// Clear drops the cached generation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = nil
}
