package output

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kayz/promptdesk/internal/promptbuild"
	"github.com/robfig/cron/v3"
)

const defaultAuditPrefix = "promptdesk"

// AuditConfig controls the JSONL audit trail.
type AuditConfig struct {
	Enabled       bool
	Dir           string
	Prefix        string
	RetentionDays int
}

// Auditor appends one JSON line per generation to a day-stamped file and removes
// files older than the retention window.
type Auditor struct {
	cfg AuditConfig
	mu  sync.Mutex
	now func() time.Time
}

// NewAuditor creates an Auditor. A blank prefix becomes "promptdesk".
func NewAuditor(cfg AuditConfig) *Auditor {
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = defaultAuditPrefix
	}
	return &Auditor{cfg: cfg, now: time.Now}
}

// Enabled reports whether records are written.
func (a *Auditor) Enabled() bool {
	return a != nil && a.cfg.Enabled
}

type auditRecord struct {
	ID           string   `json:"id"`
	Timestamp    string   `json:"timestamp"`
	Source       string   `json:"source"`
	ParamsDigest string   `json:"params_digest"`
	OutputFormat string   `json:"output_format"`
	Sections     []string `json:"sections"`
	Prompt       string   `json:"prompt"`
}

// Record appends g to today's audit file. source names the surface that produced
// it (cli, web, mcp).
func (a *Auditor) Record(g Generation, source string) error {
	if !a.Enabled() {
		return nil
	}

	if err := os.MkdirAll(a.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	now := a.now()
	filePath := filepath.Join(a.cfg.Dir, fmt.Sprintf("%s-%s.jsonl", a.cfg.Prefix, now.Format("2006-01-02")))

	record := auditRecord{
		ID:           g.ID,
		Timestamp:    now.Format(time.RFC3339),
		Source:       source,
		ParamsDigest: ParamsDigest(g.Params),
		OutputFormat: g.Params.OutputFormat,
		Sections:     sectionTitles(g.Sections),
		Prompt:       g.Prompt,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := appendJSONL(filePath, line); err != nil {
		return err
	}
	return a.cleanup(now)
}

func appendJSONL(filePath string, line []byte) error {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// Cleanup removes audit files older than the retention window.
func (a *Auditor) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cleanup(a.now())
}

func (a *Auditor) cleanup(now time.Time) error {
	if !a.Enabled() || a.cfg.RetentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(a.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list audit dir: %w", err)
	}

	cutoff := now.AddDate(0, 0, -a.cfg.RetentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, a.cfg.Prefix+"-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		filePath := filepath.Join(a.cfg.Dir, name)
		expired := false
		if fileDate, ok := parseAuditDate(name, a.cfg.Prefix); ok {
			expired = fileDate.Before(startOfDay(cutoff))
		} else {
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("stat audit file %s: %w", filePath, err)
			}
			expired = info.ModTime().Before(cutoff)
		}
		if !expired {
			continue
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove old audit file %s: %w", filePath, err)
		}
	}
	return nil
}

// Schedule runs Cleanup on the given cron spec. Stop the returned cron when done.
func (a *Auditor) Schedule(spec string, onError func(error)) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := a.Cleanup(); err != nil && onError != nil {
			onError(err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule audit cleanup %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

func parseAuditDate(filename, prefix string) (time.Time, bool) {
	raw := strings.TrimSuffix(filename, ".jsonl")
	raw = strings.TrimPrefix(raw, prefix+"-")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sectionTitles(sections []promptbuild.Section) []string {
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		if title := strings.TrimSpace(s.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// ParamsDigest returns a stable sha256 of p. The task and context are reduced to
// their lengths so the digest identifies a form setup without its content.
func ParamsDigest(p promptbuild.Params) string {
	digestInput := struct {
		Role         string            `json:"role"`
		Audience     string            `json:"audience"`
		Tone         string            `json:"tone"`
		OutputFormat string            `json:"output_format"`
		Language     string            `json:"language"`
		Length       int               `json:"max_length_words"`
		TaskLen      int               `json:"task_len"`
		ContextLen   int               `json:"context_len"`
		Include      promptbuild.Flags `json:"include"`
	}{
		Role:         p.Role,
		Audience:     p.Audience,
		Tone:         p.Tone,
		OutputFormat: p.OutputFormat,
		Language:     p.Language,
		Length:       p.MaxLengthWords,
		TaskLen:      len(strings.TrimSpace(p.Task)),
		ContextLen:   len(strings.TrimSpace(p.ExtraContext)),
		Include:      p.Include,
	}
	payload, _ := json.Marshal(digestInput)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
