package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kayz/promptdesk/internal/config"
	"github.com/kayz/promptdesk/internal/promptbuild"
	"github.com/spf13/cobra"
)

var (
	initPath           string
	initNonInteractive bool
	initSetValues      []string
	initForce          bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a promptdesk.yaml config file",
	Long: `Walk through the settings and write a promptdesk.yaml config file.

Answers can be pre-filled with --set key=value, e.g.
  promptdesk init --non-interactive --set web.port=9000 --set profile=quality`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initPath, "path", "", "Where to write the config (default: ~/.promptdesk/promptdesk.yaml)")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "Use defaults and --set values instead of prompting")
	initCmd.Flags().StringArrayVar(&initSetValues, "set", nil, "Pre-fill answers as key=value (repeatable)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

type initQuestion struct {
	Key      string
	Prompt   string
	Default  func(*initState) string
	Validate func(string) error
	Apply    func(*config.Config, string)
	// Condition skips the question when it returns false.
	Condition func(*initState) bool
}

type initState struct {
	cfg            *config.Config
	answers        map[string]string
	prefill        map[string]string
	reader         *bufio.Reader
	out            io.Writer
	nonInteractive bool
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		path = filepath.Join(config.DataDir(), "promptdesk.yaml")
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	prefill, err := parseSetValues(initSetValues)
	if err != nil {
		return err
	}

	state := &initState{
		cfg:            config.DefaultConfig(),
		answers:        make(map[string]string),
		prefill:        prefill,
		reader:         bufio.NewReader(cmd.InOrStdin()),
		out:            cmd.OutOrStdout(),
		nonInteractive: initNonInteractive,
	}

	fmt.Fprintln(state.out, "=== promptdesk init ===")
	for _, q := range initQuestions() {
		if q.Condition != nil && !q.Condition(state) {
			continue
		}
		v, err := askInitQuestion(state, q)
		if err != nil {
			return err
		}
		state.answers[q.Key] = v
		q.Apply(state.cfg, v)
	}

	for key := range prefill {
		if _, ok := state.answers[key]; !ok {
			return fmt.Errorf("unknown or unused --set key %q", key)
		}
	}

	if err := config.Save(path, state.cfg); err != nil {
		return err
	}
	fmt.Fprintf(state.out, "\nConfig saved: %s\n", path)
	return nil
}

func initQuestions() []initQuestion {
	d := config.DefaultConfig()
	auditOn := func(s *initState) bool { return parseBoolDefault(s.answers["audit.enabled"], false) }

	return []initQuestion{
		{
			Key:      "web.port",
			Prompt:   "Web form port",
			Default:  func(*initState) string { return strconv.Itoa(d.Web.Port) },
			Validate: validatePort,
			Apply:    func(c *config.Config, v string) { c.Web.Port = parseIntDefault(v, d.Web.Port) },
		},
		{
			Key:      "profile",
			Prompt:   "Profile (" + strings.Join(promptbuild.BuiltinProfileNames(), ", ") + " or a YAML path)",
			Default:  func(*initState) string { return d.Profile },
			Validate: validateProfile,
			Apply:    func(c *config.Config, v string) { c.Profile = v },
		},
		{
			Key:      "form.allow_custom",
			Prompt:   "Accept values outside the option lists? (yes/no)",
			Default:  func(*initState) string { return "no" },
			Validate: validateBool,
			Apply:    func(c *config.Config, v string) { c.Form.AllowCustom = parseBoolDefault(v, false) },
		},
		{
			Key:      "audit.enabled",
			Prompt:   "Keep an audit trail of generated prompts? (yes/no)",
			Default:  func(*initState) string { return "no" },
			Validate: validateBool,
			Apply:    func(c *config.Config, v string) { c.Audit.Enabled = parseBoolDefault(v, false) },
		},
		{
			Key:       "audit.retention_days",
			Prompt:    "Days to keep audit files",
			Default:   func(*initState) string { return strconv.Itoa(d.Audit.RetentionDays) },
			Validate:  validatePositiveInt,
			Apply:     func(c *config.Config, v string) { c.Audit.RetentionDays = parseIntDefault(v, d.Audit.RetentionDays) },
			Condition: auditOn,
		},
		{
			Key:      "slack.webhook_url",
			Prompt:   "Slack incoming webhook URL for sharing (empty to skip)",
			Default:  func(*initState) string { return "" },
			Validate: validateOptionalHTTPURL,
			Apply:    func(c *config.Config, v string) { c.Slack.WebhookURL = v },
		},
	}
}

func askInitQuestion(state *initState, q initQuestion) (string, error) {
	defaultValue := ""
	if q.Default != nil {
		defaultValue = strings.TrimSpace(q.Default(state))
	}

	if v, ok := state.prefill[q.Key]; ok || state.nonInteractive {
		if !ok || v == "" {
			v = defaultValue
		}
		if q.Validate != nil {
			if err := q.Validate(v); err != nil {
				return "", fmt.Errorf("%s: %w", q.Key, err)
			}
		}
		return v, nil
	}

	for {
		if defaultValue != "" {
			fmt.Fprintf(state.out, "%s [%s]: ", q.Prompt, defaultValue)
		} else {
			fmt.Fprintf(state.out, "%s: ", q.Prompt)
		}

		line, err := state.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		v := strings.TrimSpace(line)
		if v == "" {
			v = defaultValue
		}

		if q.Validate != nil {
			if err := q.Validate(v); err != nil {
				fmt.Fprintf(state.out, "Invalid value: %v\n", err)
				continue
			}
		}
		return v, nil
	}
}

func parseSetValues(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, item := range raw {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --set value %q, expected key=value", item)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid --set value %q, empty key", item)
		}
		out[key] = val
	}
	return out, nil
}

func validatePort(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be between 1 and 65535")
	}
	return nil
}

func validatePositiveInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateProfile(v string) error {
	if _, err := promptbuild.ResolveProfile(v); err != nil {
		return err
	}
	return nil
}

func validateOptionalHTTPURL(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func validateBool(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "n", "no", "true", "false", "1", "0":
		return nil
	default:
		return fmt.Errorf("expected yes/no")
	}
}

func parseBoolDefault(v string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true
	case "n", "no", "false", "0":
		return false
	default:
		return defaultValue
	}
}

func parseIntDefault(v string, defaultValue int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}
