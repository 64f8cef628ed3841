// graphdrift captures point-in-time snapshots of graph database
// monitoring queries and reports drift between any two snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"graphdrift/internal/cli"
	"graphdrift/internal/compare"
	"graphdrift/internal/config"
	"graphdrift/internal/graphdb"
	"graphdrift/internal/report"
	"graphdrift/internal/shortcut"
	"graphdrift/internal/state"
	"graphdrift/internal/update"
)

// Exit codes. Partial update failures only affect the exit code under
// --strict; everything else that fails is surfaced via logging.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ()))
}

// run orchestrates one command invocation and returns its exit code.
// Separated from main() to enable testing.
func run(args, environ []string) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, cli.ErrNoSubcommand) {
			return exitOK
		}
		return exitError
	}

	logger := newLogger(cmd)
	logger.Debug("launching graphdrift", "subcommand", string(cmd.Subcommand))

	settings := loadSettings(cmd, environ, logger)

	switch cmd.Subcommand {
	case cli.SubcommandUpdate:
		return runUpdate(cmd, settings, environ, logger)
	case cli.SubcommandGetDrift:
		return runGetDrift(cmd, logger)
	case cli.SubcommandAddShortcut:
		return runAddShortcut(cmd, logger)
	}
	logger.Error("no command detected, try --help")
	return exitOK
}

// newLogger builds the one logger instance the whole invocation uses.
func newLogger(cmd cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Verbose {
		level = slog.LevelDebug
	} else if cmd.Quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadSettings reads the optional settings file. A broken file is
// logged and ignored; flags and built-in defaults still apply.
func loadSettings(cmd cli.Command, environ []string, logger *slog.Logger) config.Settings {
	path := cmd.ConfigPath
	if path == "" {
		path = config.DefaultPath(environ)
	}
	settings, err := config.LoadFile(path)
	if err != nil {
		logger.Warn("ignoring unreadable settings file", "path", path, "error", err)
		return config.Settings{}
	}
	return settings
}

func runUpdate(cmd cli.Command, settings config.Settings, environ []string, logger *slog.Logger) int {
	dir := firstNonEmpty(cmd.DriftDirectory, settings.DriftDirectory)
	if !validDirectory(dir, logger) {
		return exitOK
	}

	uri := firstNonEmpty(cmd.Neo4jURI, settings.Neo4jURI, cli.DefaultNeo4jURI)
	user := firstNonEmpty(cmd.Neo4jUser, settings.Neo4jUser)
	password := resolvePassword(cmd, settings, environ, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	driver, err := graphdb.Connect(ctx, uri, user, password)
	if err != nil {
		if ctx.Err() != nil {
			return exitInterrupted
		}
		switch {
		case errors.Is(err, graphdb.ErrAuth):
			logger.Error("unable to auth to the graph database, check that the provided username and password are valid credentials", "error", err)
		case errors.Is(err, graphdb.ErrUnavailable):
			logger.Error("unable to connect to the graph database, make sure the server is running and accessible from your network", "uri", uri, "error", err)
		default:
			logger.Error("unable to open graph database driver", "uri", uri, "error", err)
		}
		return exitOK
	}
	defer driver.Close(context.Background())

	session := driver.Session(ctx)
	defer session.Close(context.Background())

	summary, err := update.Run(ctx, logger, session, dir)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			logger.Warn("update interrupted")
			return exitInterrupted
		}
		logger.Error("update aborted", "error", err)
		return exitOK
	}

	logger.Info("update finished", "updated", len(summary.Updated), "skipped", len(summary.Skipped))
	if cmd.Strict && len(summary.Skipped) > 0 {
		return exitError
	}
	return exitOK
}

func runGetDrift(cmd cli.Command, logger *slog.Logger) int {
	if !validDirectory(cmd.QueryDirectory, logger) {
		return exitOK
	}
	if cmd.StartState == "" || cmd.EndState == "" {
		logger.Error("both --start-state and --end-state are required")
		return exitOK
	}

	table, err := shortcut.LoadDir(cmd.QueryDirectory)
	if err != nil {
		logger.Error("unable to load shortcut table", "directory", cmd.QueryDirectory, "error", err)
		return exitOK
	}

	start, ok := loadEndpoint(cmd.QueryDirectory, table, cmd.StartState, logger)
	if !ok {
		return exitOK
	}
	end, ok := loadEndpoint(cmd.QueryDirectory, table, cmd.EndState, logger)
	if !ok {
		return exitOK
	}

	diff, err := compare.Compare(start, end)
	if err != nil {
		logger.Error("unable to compare states", "start", cmd.StartState, "end", cmd.EndState, "error", err)
		return exitOK
	}

	if cmd.JSONOutput {
		out, err := report.FormatJSON(diff)
		if err != nil {
			logger.Error("unable to render drift report", "error", err)
			return exitOK
		}
		fmt.Println(out)
	} else {
		fmt.Print(report.FormatText(diff))
	}
	return exitOK
}

func runAddShortcut(cmd cli.Command, logger *slog.Logger) int {
	if !validDirectory(cmd.QueryDirectory, logger) {
		return exitOK
	}
	if cmd.ShortcutAlias == "" || cmd.ShortcutFile == "" {
		logger.Error("both --shortcut and --file are required")
		return exitOK
	}
	if err := shortcut.Add(cmd.QueryDirectory, cmd.ShortcutAlias, cmd.ShortcutFile); err != nil {
		logger.Error("unable to add shortcut", "directory", cmd.QueryDirectory, "error", err)
		return exitOK
	}
	logger.Info("shortcut added", "alias", cmd.ShortcutAlias, "file", cmd.ShortcutFile)
	return exitOK
}

// loadEndpoint resolves a user-supplied name through the alias table
// (one hop, literal fallback) and loads the snapshot it points at.
func loadEndpoint(dir string, table shortcut.Shortcut, name string, logger *slog.Logger) (state.State, bool) {
	filename := table.Resolve(name)
	st, err := state.LoadFile(filepath.Join(dir, filename))
	if err != nil {
		logger.Error("unable to load state", "name", name, "file", filename, "error", err)
		return state.State{}, false
	}
	return st, true
}

// validDirectory gates every command on the target directory. A
// missing or invalid directory is a logged no-op, not a failure.
func validDirectory(dir string, logger *slog.Logger) bool {
	if dir == "" {
		logger.Info("no directory provided, nothing to do")
		return false
	}
	info, err := os.Stat(dir)
	if err != nil {
		logger.Warn("provided path does not exist, nothing to do", "path", dir)
		return false
	}
	if !info.IsDir() {
		logger.Warn("provided path is not a directory, nothing to do", "path", dir)
		return false
	}
	return true
}

// resolvePassword picks exactly one credential source: the interactive
// prompt supersedes the environment variable, which supersedes none.
func resolvePassword(cmd cli.Command, settings config.Settings, environ []string, logger *slog.Logger) string {
	if cmd.Neo4jUser == "" && settings.Neo4jUser == "" {
		return ""
	}
	user := firstNonEmpty(cmd.Neo4jUser, settings.Neo4jUser)
	password := ""
	if cmd.Neo4jPasswordPrompt {
		logger.Info("reading password interactively", "user", user)
		fmt.Fprint(os.Stderr, "Password: ")
		entered, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			logger.Warn("unable to read password from terminal", "error", err)
		}
		password = string(entered)
	} else if envVar := firstNonEmpty(cmd.Neo4jPasswordEnvVar, settings.Neo4jPasswordEnvVar); envVar != "" {
		logger.Debug("reading password from environment variable", "user", user, "var", envVar)
		password = envLookup(environ, envVar)
	}
	if password == "" {
		logger.Warn("a username was provided but a password could not be found")
	}
	return password
}

// envLookup finds a variable in an environ slice ("KEY=VALUE" format).
func envLookup(environ []string, key string) string {
	prefix := key + "="
	for _, entry := range environ {
		if strings.HasPrefix(entry, prefix) {
			return strings.TrimPrefix(entry, prefix)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
