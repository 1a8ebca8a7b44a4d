// Wolfe is a voice-driven hotel reservation agent.
//
// It answers a WebSocket "phone line": caller audio is transcribed,
// run through a tool-calling LLM conversation that can look up and
// modify reservations in MongoDB, and the reply is spoken back with
// synthesized speech. Configuration is loaded from a single YAML file
// discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	wolfe serve              Start the session server
//	wolfe seed               Load the sample accounts into the store
//	wolfe version            Print version and build information
//	wolfe -o json version    Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/qoodeng/wolfe/internal/agent"
	"github.com/qoodeng/wolfe/internal/api"
	"github.com/qoodeng/wolfe/internal/buildinfo"
	"github.com/qoodeng/wolfe/internal/config"
	"github.com/qoodeng/wolfe/internal/llm"
	"github.com/qoodeng/wolfe/internal/reservations"
	"github.com/qoodeng/wolfe/internal/store"
	"github.com/qoodeng/wolfe/internal/transcript"
	"github.com/qoodeng/wolfe/internal/voice"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the wolfe command. Arguments are
// parsed by hand: the flag package relies on package-level globals
// (flag.CommandLine), which makes it impossible to call run()
// concurrently from tests, and the argument surface here is small.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, configPath)
	case "seed":
		return runSeed(ctx, stdout, configPath)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	// Print fields in a stable order for human readability.
	for _, k := range []string{"version", "git_commit", "git_branch", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Wolfe - Voice Hotel Reservation Agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: wolfe [flags] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the session server")
	fmt.Fprintln(w, "  seed         Load the sample accounts into the store")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./wolfe.yaml, ~/.config/wolfe/wolfe.yaml, /etc/wolfe/wolfe.yaml")
	return nil
}

// runSeed handles the "wolfe seed" subcommand. It loads the sample
// accounts into the configured store, skipping any that already exist.
func runSeed(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := config.NewLogger(stdout, slog.LevelInfo)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Info("config loaded", "path", cfgPath)

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	seeder, ok := st.(store.Seeder)
	if !ok {
		return fmt.Errorf("store backend %q does not support seeding", cfg.Store.Backend)
	}
	if err := seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Fprintln(stdout, "Sample accounts loaded.")
	return nil
}

// runServe handles the "wolfe serve" subcommand. It is the primary
// operating mode: loads config, connects the reservation store, builds
// the LLM client and voice services, starts the session server, and
// blocks until a shutdown signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	logger := config.NewLogger(stdout, slog.LevelInfo)
	logger.Info("starting Wolfe", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that we know the desired level. The
	// initial Info-level logger only covers the startup banner.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = config.NewLogger(stdout, level)
	}

	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"store", cfg.Store.Backend,
		"model", cfg.OpenAI.Model,
	)

	// --- Reservation store ---
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- LLM client ---
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	llmClient, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, "", logger)
	if err != nil {
		return err
	}

	// --- Reservation service ---
	svc := reservations.NewService(st, reservations.NewIDGenerator(), logger)

	// --- Call transcripts ---
	// Optional. Without a path, calls are not persisted.
	var recorder agent.Recorder
	if cfg.TranscriptDB != "" {
		ts, err := transcript.NewStore(cfg.TranscriptDB)
		if err != nil {
			return fmt.Errorf("open transcript database %s: %w", cfg.TranscriptDB, err)
		}
		defer ts.Close()
		recorder = ts
		logger.Info("transcript database opened", "path", cfg.TranscriptDB)
	} else {
		logger.Info("transcripts disabled (no transcript_db configured)")
	}

	// --- Voice services ---
	// Each leg is optional; a missing key degrades the server to text
	// frames for that direction.
	var stt voice.Transcriber
	if cfg.Voice.Deepgram.APIKey != "" {
		stt, err = voice.NewDeepgramTranscriber(cfg.Voice.Deepgram.APIKey, cfg.Voice.Deepgram.Model, "", logger)
		if err != nil {
			return err
		}
		logger.Info("speech-to-text enabled", "model", cfg.Voice.Deepgram.Model)
	} else {
		logger.Warn("speech-to-text disabled (no deepgram api key)")
	}

	var tts voice.Synthesizer
	if cfg.Voice.Cartesia.APIKey != "" {
		tts, err = voice.NewCartesiaSynthesizer(cfg.Voice.Cartesia.APIKey, cfg.Voice.Cartesia.VoiceID, cfg.Voice.Cartesia.ModelID, "", logger)
		if err != nil {
			return err
		}
		logger.Info("text-to-speech enabled", "voice_id", cfg.Voice.Cartesia.VoiceID)
	} else {
		logger.Warn("text-to-speech disabled (no cartesia api key)")
	}

	// --- Session server ---
	listen := fmt.Sprintf("%s:%d", cfg.Listen.Address, cfg.Listen.Port)
	server := api.NewServer(listen, api.Dependencies{
		LLM:               llmClient,
		Reservations:      svc,
		Transcriber:       stt,
		Synthesizer:       tts,
		Recorder:          recorder,
		Model:             cfg.OpenAI.Model,
		MaxToolIterations: cfg.Agent.MaxToolIterations,
	}, logger)

	// --- Signal handling and graceful shutdown ---
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		_ = server.Shutdown(context.Background())
	}()

	if err := server.Start(ctx); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("Wolfe stopped")
	return nil
}

// openStore connects the configured reservation store backend. The
// memory backend is pre-seeded so a fresh process has the sample
// accounts to talk about.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "", "mongo":
		ms, err := store.NewMongoStore(ctx, cfg.Store.MongoURL, cfg.Store.Database, cfg.Store.Collection, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect store: %w", err)
		}
		logger.Info("store connected", "backend", "mongo", "database", cfg.Store.Database)
		return ms, func() {
			if err := ms.Close(); err != nil {
				logger.Warn("store close failed", "error", err)
			}
		}, nil
	case "memory":
		mem := store.NewMemoryStore()
		if err := mem.Seed(ctx); err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		logger.Info("store connected", "backend", "memory")
		return mem, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}

// loadConfig locates and parses the YAML configuration file. If
// explicit is non-empty, that exact path is used (and must exist).
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}
