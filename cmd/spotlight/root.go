package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/gen2brain/beeep"

	"github.com/lixenwraith/spotlight/config"
	"github.com/lixenwraith/spotlight/logging"
)

const defaultCommand = "view"

type command struct {
	name        string
	usage       string
	description string
	configure   func(fs *flag.FlagSet)
	run         func(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error
}

// AppContext carries the resolved configuration into subcommands
type AppContext struct {
	Config config.Config
	Logger *slog.Logger
}

// RootCommand parses global flags and dispatches to a subcommand
type RootCommand struct {
	commands map[string]command
	stdout   io.Writer
	stderr   io.Writer
	appCtx   *AppContext

	configPath   string
	settingsPath string
	logLevel     string
	logFormat    string

	lookupEnv func(string) (string, bool)
	dotEnv    func() error
	notify    func(title, message string) error
}

// NewRootCommand builds the dispatcher with the view and settings commands
func NewRootCommand() *RootCommand {
	rc := &RootCommand{
		commands:  make(map[string]command),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
		dotEnv:    func() error { return config.LoadDotEnv() },
		notify:    desktopNotify,
	}

	rc.register(newViewCommand())
	rc.register(newSettingsCommand(rc))
	return rc
}

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

func (rc *RootCommand) register(cmd command) {
	rc.commands[cmd.name] = cmd
}

// Execute parses global flags and runs the named subcommand
// With no command, or when the first argument is not a command, the viewer opens
func (rc *RootCommand) Execute(args []string) error {
	rootFlags := flag.NewFlagSet("spotlight", flag.ContinueOnError)
	rootFlags.SetOutput(rc.stderr)
	rootFlags.Usage = func() { rc.printHelp() }

	rootFlags.StringVar(&rc.configPath, "config", "", "Path to config file (default: <user config dir>/spotlight/config.yaml)")
	rootFlags.StringVar(&rc.settingsPath, "settings", "", "Override the settings file path")
	rootFlags.StringVar(&rc.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootFlags.StringVar(&rc.logFormat, "log-format", "", "Override log output format (json, text)")

	if err := rootFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	remaining := rootFlags.Args()
	name := defaultCommand
	if len(remaining) > 0 {
		if _, ok := rc.commands[remaining[0]]; ok {
			name, remaining = remaining[0], remaining[1:]
		} else if remaining[0] == "help" {
			rc.printHelp()
			return nil
		}
	}
	subcommand := rc.commands[name]

	fs := flag.NewFlagSet(subcommand.name, flag.ContinueOnError)
	fs.SetOutput(rc.stderr)
	fs.Usage = func() {
		fmt.Fprintf(rc.stdout, "Usage: spotlight %s %s\n", subcommand.name, subcommand.usage)
		if subcommand.description != "" {
			fmt.Fprintln(rc.stdout, subcommand.description)
		}
		fs.PrintDefaults()
	}
	if subcommand.configure != nil {
		subcommand.configure(fs)
	}
	if err := fs.Parse(remaining); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, err := rc.ensureAppContext()
	if err != nil {
		return err
	}
	return subcommand.run(fs, fs.Args(), ctx, rc.stdout, rc.stderr)
}

// ensureAppContext resolves configuration: defaults, config file, .env, environment, then flags
func (rc *RootCommand) ensureAppContext() (*AppContext, error) {
	if rc.appCtx != nil {
		return rc.appCtx, nil
	}

	if err := rc.dotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(rc.lookupEnv); err != nil {
		return nil, err
	}

	if rc.settingsPath != "" {
		cfg.SettingsPath = rc.settingsPath
	}
	if rc.logLevel != "" {
		lvl, err := config.NormalizeLogLevel(rc.logLevel)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Level = lvl
	}
	if rc.logFormat != "" {
		format, err := config.NormalizeFormat(rc.logFormat)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Format = format
	}

	// Subcommands other than view log to stderr; view reopens onto the log file
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: rc.stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "source", cfg.Source, "settings", cfg.SettingsPath)

	rc.appCtx = &AppContext{Config: cfg, Logger: logger}
	return rc.appCtx, nil
}

func (rc *RootCommand) printHelp() {
	fmt.Fprintln(rc.stdout, "spotlight - cursor spotlight for terminal documents")
	fmt.Fprintln(rc.stdout, "")
	fmt.Fprintln(rc.stdout, "Usage: spotlight [global flags] [command] [args]")
	fmt.Fprintln(rc.stdout, "Global flags:")
	fmt.Fprintln(rc.stdout, "  -config string      Path to config file")
	fmt.Fprintln(rc.stdout, "  -settings string    Override the settings file path")
	fmt.Fprintln(rc.stdout, "  -log-level string   Override log level (debug, info, warn, error)")
	fmt.Fprintln(rc.stdout, "  -log-format string  Override log output format (json, text)")
	fmt.Fprintln(rc.stdout, "")
	fmt.Fprintln(rc.stdout, "Available commands:")

	names := make([]string, 0, len(rc.commands))
	for name := range rc.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(rc.stdout, "  %-10s %s\n", name, rc.commands[name].description)
	}
}
