// ABOUTME: Entry point for the stride coaching CLI
// ABOUTME: Dispatches subcommands and wires config, store, and the completion client

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/stridecoach/stride/internal/anthropic"
	"github.com/stridecoach/stride/internal/config"
	"github.com/stridecoach/stride/internal/credentials"
	"github.com/stridecoach/stride/internal/export"
	"github.com/stridecoach/stride/internal/session"
	"github.com/stridecoach/stride/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _        _     _
  ___| |_ _ __(_) __| | ___
 / __| __| '__| |/ _' |/ _ \
 \__ \ |_| |  | | (_| |  __/
 |___/\__|_|  |_|\__,_|\___|
`

// getConfigPath returns the path to the stride config file.
// Priority: STRIDE_CONFIG env var > XDG_CONFIG_HOME/stride/config.yaml > ~/.config/stride/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("STRIDE_CONFIG"); envPath != "" {
		return envPath
	}
	return filepath.Join(getConfigDir(), "config.yaml")
}

// getConfigDir returns the stride configuration directory.
func getConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".stride" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "stride")
}

// getDataPath returns the path to the stride data directory.
// Priority: XDG_DATA_HOME/stride > ~/.local/share/stride
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "stride")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Local .env beats nothing, real environment beats .env
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = cmdInit()
	case "key":
		err = cmdKey(args)
	case "chat":
		err = cmdChat(ctx, args)
	case "goals":
		err = cmdGoals(ctx, args)
	case "conversations":
		err = cmdConversations(ctx, args)
	case "history":
		err = cmdHistory(ctx, args)
	case "export":
		err = cmdExport(ctx, args)
	case "version", "-v", "--version":
		fmt.Printf("stride %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: stride <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  init                       Write a starter config file")
	fmt.Println("  key set                    Store your API key")
	fmt.Println("  key show                   Show whether an API key is stored")
	fmt.Println("  key delete                 Remove the stored API key")
	fmt.Println("  chat [msg]                 Talk to your coach (REPL if no message)")
	fmt.Println("  goals                      List goals")
	fmt.Println("  goals add                  Create a goal")
	fmt.Println("  goals show <id>            Show one goal with its metrics")
	fmt.Println("  goals update <id>          Update a goal's fields")
	fmt.Println("  goals delete <id>          Delete a goal")
	fmt.Println("  conversations              List conversations")
	fmt.Println("  history <conversation-id>  Print a conversation")
	fmt.Println("  export <conversation-id>   Export a conversation as Markdown or HTML")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  ANTHROPIC_API_KEY   API key (overrides the stored one)")
	fmt.Println("  STRIDE_CONFIG       Config file path (default: ~/.config/stride/config.yaml)")
	fmt.Println("  STRIDE_MODEL        Model override")
	fmt.Println("  STRIDE_DB_PATH      Database path override")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  stride key set")
	fmt.Println("  stride goals add --name \"Run a 5k\" --category running")
	fmt.Println("  stride chat --goal <goal-id> \"How should I start?\"")
	fmt.Println()
}

// app bundles the wired-up components a command needs.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	session  *session.Service
	exporter *export.Exporter
	logger   *slog.Logger
}

// newApp loads configuration and opens the store and completion client.
// Callers must Close the app when done.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(getDataPath(), "stride.db")
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	systemPrompt, err := cfg.SystemPrompt()
	if err != nil {
		st.Close()
		return nil, err
	}

	client := anthropic.NewClient(credentialSource(), anthropic.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger)

	svc := session.New(st, session.ClientCompleter{Client: client}, session.Options{
		Model:        cfg.Coach.Model,
		MaxTokens:    cfg.Coach.MaxTokens,
		SystemPrompt: systemPrompt,
	}, logger)

	return &app{
		cfg:      cfg,
		store:    st,
		session:  svc,
		exporter: export.New(st, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// loadConfig reads the config file, falling back to defaults when none
// exists yet.
func loadConfig() (*config.Config, error) {
	path := getConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

// credentialSource prefers ANTHROPIC_API_KEY from the environment, then
// the key stored by "stride key set".
func credentialSource() anthropic.CredentialSource {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return staticKey(key)
	}
	return credentials.NewFileStore(credentialPath())
}

func credentialPath() string {
	return filepath.Join(getConfigDir(), "credentials")
}

type staticKey string

func (k staticKey) Get() (string, error) { return string(k), nil }

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
// Logs go to stderr so transcripts and exports on stdout stay clean.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Fprint(os.Stderr, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

const starterConfig = `# stride configuration
api:
  # base_url: "https://api.anthropic.com/v1/messages"
  timeout: "30s"

coach:
  model: "claude-sonnet-4-20250514"
  max_tokens: 1024
  # system_prompt_path: "~/.config/stride/prompt.md"

database:
  # Defaults to ~/.local/share/stride/stride.db
  # path: "/var/lib/stride/stride.db"

logging:
  level: "info"
  format: "text"
`

// cmdInit writes a starter config file, refusing to clobber an existing one.
func cmdInit() error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("Wrote %s\n", path)
	fmt.Println("Next: store your API key with `stride key set`")
	return nil
}

// cmdKey manages the stored API key.
func cmdKey(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: stride key <set|show|delete>")
	}

	creds := credentials.NewFileStore(credentialPath())

	switch args[0] {
	case "set":
		fmt.Print("API key: ")
		var key string
		if _, err := fmt.Scanln(&key); err != nil {
			return fmt.Errorf("reading key: %w", err)
		}
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("key must not be empty")
		}
		if err := creds.Set(strings.TrimSpace(key)); err != nil {
			return err
		}
		color.Green("Key stored in %s\n", credentialPath())
		return nil

	case "show":
		key, err := creds.Get()
		if err == credentials.ErrNotFound {
			fmt.Println("No API key stored")
			return nil
		}
		if err != nil {
			return err
		}
		// Never print the full secret
		if len(key) > 8 {
			key = key[:8] + "..."
		}
		fmt.Printf("Stored key: %s\n", key)
		return nil

	case "delete":
		if err := creds.Delete(); err != nil {
			return err
		}
		fmt.Println("Key removed")
		return nil

	default:
		return fmt.Errorf("unknown key subcommand: %s", args[0])
	}
}
