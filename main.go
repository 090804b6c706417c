package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"linediff/engine"
	"linediff/logger"
	"linediff/text"
	"linediff/types"
)

type Config struct {
	NsID                   int                   `json:"ns_id"`
	LogLevel               string                `json:"log_level"` // debug, info, warn, error
	MaxComputationTimeMs   *int                  `json:"max_computation_time_ms"`
	IgnoreTrimWhitespace   bool                  `json:"ignore_trim_whitespace"`
	ComputeMoves           bool                  `json:"compute_moves"`
	ComputeCharChanges     *bool                 `json:"compute_char_changes"`
	ExtendToSubwords       bool                  `json:"extend_to_subwords"`
	CacheEntries           int                   `json:"cache_entries"`
	StatsIntervalSeconds   int                   `json:"stats_interval_seconds"`
	DebugImmediateShutdown bool                  `json:"debug_immediate_shutdown"`
	IdleShutdownSeconds    int                   `json:"idle_shutdown_seconds"`
	Gops                   bool                  `json:"gops"`
	Heuristics             text.Heuristics       `json:"heuristics"`
	Highlights             types.HighlightGroups `json:"highlights"`
}

const (
	defaultMaxComputationTimeMs = 5000
	defaultIdleShutdownSeconds  = 30
)

type ServerMode string

const (
	ModeDaemon ServerMode = "daemon"
	ModeClient ServerMode = "client"
	ModeDiff   ServerMode = "diff"
)

// parseConfig reads the JSON config. Empty input yields the defaults.
func parseConfig(raw string) (Config, error) {
	var config Config
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &config); err != nil {
			return Config{}, errors.Wrap(err, "invalid config")
		}
	}

	if config.MaxComputationTimeMs == nil {
		ms := defaultMaxComputationTimeMs
		config.MaxComputationTimeMs = &ms
	} else if *config.MaxComputationTimeMs < 0 {
		return Config{}, errors.Errorf("max_computation_time_ms must not be negative, got %d", *config.MaxComputationTimeMs)
	}
	if config.ComputeCharChanges == nil {
		on := true
		config.ComputeCharChanges = &on
	}
	if config.IdleShutdownSeconds <= 0 {
		config.IdleShutdownSeconds = defaultIdleShutdownSeconds
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	config.Highlights = withDefaultGroups(config.Highlights)
	return config, nil
}

func withDefaultGroups(g types.HighlightGroups) types.HighlightGroups {
	d := types.DefaultHighlightGroups
	if g.LineDeleted == "" {
		g.LineDeleted = d.LineDeleted
	}
	if g.LineAdded == "" {
		g.LineAdded = d.LineAdded
	}
	if g.CharDeleted == "" {
		g.CharDeleted = d.CharDeleted
	}
	if g.CharAdded == "" {
		g.CharAdded = d.CharAdded
	}
	if g.Moved == "" {
		g.Moved = d.Moved
	}
	return g
}

// DiffOptions are the defaults applied to every request.
func (c Config) DiffOptions() text.Options {
	return text.Options{
		IgnoreTrimWhitespace: c.IgnoreTrimWhitespace,
		MaxComputationTime:   time.Duration(*c.MaxComputationTimeMs) * time.Millisecond,
		ComputeMoves:         c.ComputeMoves,
		ComputeCharChanges:   *c.ComputeCharChanges,
		ExtendToSubwords:     c.ExtendToSubwords,
		Heuristics:           c.Heuristics,
	}
}

func (c Config) EngineConfig() engine.EngineConfig {
	return engine.EngineConfig{
		NsID:          c.NsID,
		Defaults:      c.DiffOptions(),
		CacheEntries:  c.CacheEntries,
		StatsInterval: time.Duration(c.StatsIntervalSeconds) * time.Second,
		Groups:        c.Highlights,
	}
}

func execDir() string {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	return filepath.Dir(execPath)
}

// Setup logger to log to a file in the same directory as the executable
// Caller must defer logger.Close()
func setupLogger(logLevel string) *logger.LimitedLogger {
	logPath := filepath.Join(execDir(), "linediff.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}

	level := logger.ParseLogLevel(logLevel)
	limitedLogger := logger.NewLimitedLogger(f, level)
	log.SetOutput(limitedLogger)
	return limitedLogger
}

func getSocketPath() string {
	return filepath.Join(execDir(), "linediff.sock")
}

func getPidPath() string {
	return filepath.Join(execDir(), "linediff.pid")
}

func isDaemonRunning() (bool, int) {
	data, err := os.ReadFile(getPidPath())
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// On Unix, Signal(0) checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil, pid
}

func loadConfig() Config {
	config, err := parseConfig(os.Getenv("LINEDIFF_CONFIG"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	return config
}

func runDaemon() {
	config := loadConfig()

	limitedLogger := setupLogger(config.LogLevel)
	defer limitedLogger.Close()
	log.Printf("config: %+v", config)

	daemon, err := NewDaemon(config)
	if err != nil {
		log.Fatalf("error creating daemon: %v", err)
	}

	if err := daemon.Start(); err != nil {
		log.Fatalf("error starting daemon: %v", err)
	}
}

func runClient() {
	client := NewClient()

	if err := client.EnsureDaemonRunning(); err != nil {
		log.Fatalf("error ensuring daemon is running: %v", err)
	}

	if err := client.Connect(); err != nil {
		log.Fatalf("error connecting to daemon: %v", err)
	}
}

func main() {
	var mode ServerMode = ModeClient

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--daemon":
			mode = ModeDaemon
		case "--diff":
			mode = ModeDiff
		}
	}

	switch mode {
	case ModeDaemon:
		runDaemon()
	case ModeDiff:
		os.Exit(runDiff(os.Args[2:], os.Stdout, os.Stderr))
	case ModeClient:
		runClient()
	}
}
