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

// Config holds server configuration. Environment variables provide the
// defaults and command-line flags override them.
type Config struct {
	Addr            string
	Env             string
	HistoryCapacity int
	Workers         int
	WorkerBacklog   int
	DBPath          string
	CORSAllow       []string
	PingInterval    time.Duration
	ResolveTimeout  time.Duration
	WriteWait       time.Duration
}

// FromEnv reads configuration from environment variables with sensible defaults.
func FromEnv() Config {
	return Config{
		Addr:            envOrDefault("ADDR", "localhost:8000"),
		Env:             envOrDefault("APP_ENV", "dev"),
		HistoryCapacity: envOrDefaultInt("HISTORY_CAPACITY", 1000),
		Workers:         envOrDefaultInt("WORKERS", 2),
		WorkerBacklog:   envOrDefaultInt("WORKER_BACKLOG", 64),
		DBPath:          envOrDefault("DB_PATH", "meowww.db"),
		CORSAllow:       splitCSV(envOrDefault("CORS_ALLOW", "*")),
		PingInterval:    envOrDefaultDuration("PING_INTERVAL", 30*time.Second),
		ResolveTimeout:  envOrDefaultDuration("RESOLVE_TIMEOUT", 10*time.Second),
		WriteWait:       envOrDefaultDuration("WRITE_WAIT", 10*time.Second),
	}
}

// Load parses command-line arguments on top of the environment. The
// first positional argument, if any, is the bind address. A -h flag
// yields an error wrapping flag.ErrHelp.
func Load(args []string) (Config, error) {
	cfg := FromEnv()
	cors := strings.Join(cfg.CORSAllow, ",")

	fs := flagSet(&cfg, &cors)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSAllow = splitCSV(cors)

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Addr = fs.Arg(0)
	default:
		return Config{}, fmt.Errorf("config: unexpected arguments %q", fs.Args()[1:])
	}
	return cfg, cfg.Validate()
}

// Usage prints flag help to w, with the current environment as defaults.
func Usage(w io.Writer) {
	cfg := FromEnv()
	cors := strings.Join(cfg.CORSAllow, ",")
	fmt.Fprintln(w, "usage: meowww [flags] [addr]")
	fs := flagSet(&cfg, &cors)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func flagSet(cfg *Config, cors *string) *flag.FlagSet {
	fs := flag.NewFlagSet("meowww", flag.ContinueOnError)
	fs.StringVar(&cfg.Env, "env", cfg.Env, "environment (dev or prod)")
	fs.IntVar(&cfg.HistoryCapacity, "history", cfg.HistoryCapacity, "messages kept per room")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent request workers")
	fs.IntVar(&cfg.WorkerBacklog, "backlog", cfg.WorkerBacklog, "requests queued while all workers are busy")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "stats database path, empty to disable")
	fs.DurationVar(&cfg.PingInterval, "ping", cfg.PingInterval, "probe sweep interval, 0 to disable")
	fs.DurationVar(&cfg.ResolveTimeout, "resolve-timeout", cfg.ResolveTimeout, "max wait for a pending notification channel, 0 waits forever")
	fs.DurationVar(&cfg.WriteWait, "write-wait", cfg.WriteWait, "notification write deadline")
	fs.StringVar(cors, "cors", *cors, "comma-separated allowed origins")
	return fs
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("config: bind address required")
	case c.HistoryCapacity < 0:
		return fmt.Errorf("config: history capacity must be >= 0, got %d", c.HistoryCapacity)
	case c.Workers <= 0:
		return fmt.Errorf("config: workers must be > 0, got %d", c.Workers)
	case c.WorkerBacklog < 0:
		return fmt.Errorf("config: backlog must be >= 0, got %d", c.WorkerBacklog)
	case c.PingInterval < 0 || c.ResolveTimeout < 0 || c.WriteWait < 0:
		return errors.New("config: durations must not be negative")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
