// Package cli parses command line arguments for graphdrift.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: graphdrift <update|get-drift|add-shortcut> [flags]")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// DefaultNeo4jURI is used when neither a flag nor the settings file
// supplies one.
const DefaultNeo4jURI = "bolt://localhost:7687"

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandUpdate      Subcommand = "update"
	SubcommandGetDrift    Subcommand = "get-drift"
	SubcommandAddShortcut Subcommand = "add-shortcut"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand

	// Global flags
	Verbose    bool   // -v / --verbose
	Quiet      bool   // -q / --quiet
	ConfigPath string // --config <path>

	// update flags
	Neo4jURI            string // --neo4j-uri <uri>
	Neo4jUser           string // --neo4j-user <user>
	Neo4jPasswordEnvVar string // --neo4j-password-env-var <var>
	Neo4jPasswordPrompt bool   // --neo4j-password-prompt
	DriftDirectory      string // --drift-detection-directory <dir>
	Strict              bool   // --strict (exit non-zero when any directory was skipped)

	// get-drift / add-shortcut flags
	QueryDirectory string // --query-directory <dir>
	StartState     string // --start-state <name>
	EndState       string // --end-state <name>
	ShortcutAlias  string // --shortcut <alias>
	ShortcutFile   string // --file <filename>
	JSONOutput     bool   // --json (get-drift output format)
}

// ParseArgs parses CLI arguments into a Command. It expects args to be
// os.Args[1:]. Global flags may appear before the subcommand.
func ParseArgs(args []string) (Command, error) {
	var cmd Command

	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") {
		switch args[i] {
		case "-v", "--verbose":
			cmd.Verbose = true
		case "-q", "--quiet":
			cmd.Quiet = true
		case "--config":
			if i+1 >= len(args) {
				return Command{}, fmt.Errorf("--config: %w", ErrMissingFlagValue)
			}
			i++
			cmd.ConfigPath = args[i]
		default:
			return Command{}, fmt.Errorf("unknown global flag %q", args[i])
		}
		i++
	}

	if i >= len(args) {
		return Command{}, ErrNoSubcommand
	}

	switch Subcommand(args[i]) {
	case SubcommandUpdate, SubcommandGetDrift, SubcommandAddShortcut:
		cmd.Subcommand = Subcommand(args[i])
	default:
		return Command{}, fmt.Errorf("%w (got %q)", ErrNoSubcommand, args[i])
	}
	i++

	for i < len(args) {
		arg := args[i]
		switch arg {
		case "-v", "--verbose":
			cmd.Verbose = true
			i++
			continue
		case "-q", "--quiet":
			cmd.Quiet = true
			i++
			continue
		case "--neo4j-password-prompt":
			cmd.Neo4jPasswordPrompt = true
			i++
			continue
		case "--strict":
			cmd.Strict = true
			i++
			continue
		case "--json":
			cmd.JSONOutput = true
			i++
			continue
		}

		target := valueFlag(&cmd, arg)
		if target == nil {
			return Command{}, fmt.Errorf("unknown flag %q for %s", arg, cmd.Subcommand)
		}
		if i+1 >= len(args) {
			return Command{}, fmt.Errorf("%s: %w", arg, ErrMissingFlagValue)
		}
		i++
		*target = args[i]
		i++
	}

	return cmd, nil
}

// valueFlag maps a value-taking flag to its destination field, or nil
// for flags the subcommand doesn't accept.
func valueFlag(cmd *Command, flag string) *string {
	switch cmd.Subcommand {
	case SubcommandUpdate:
		switch flag {
		case "--neo4j-uri":
			return &cmd.Neo4jURI
		case "--neo4j-user":
			return &cmd.Neo4jUser
		case "--neo4j-password-env-var":
			return &cmd.Neo4jPasswordEnvVar
		case "--drift-detection-directory":
			return &cmd.DriftDirectory
		}
	case SubcommandGetDrift:
		switch flag {
		case "--query-directory":
			return &cmd.QueryDirectory
		case "--start-state":
			return &cmd.StartState
		case "--end-state":
			return &cmd.EndState
		}
	case SubcommandAddShortcut:
		switch flag {
		case "--query-directory":
			return &cmd.QueryDirectory
		case "--shortcut":
			return &cmd.ShortcutAlias
		case "--file":
			return &cmd.ShortcutFile
		}
	}
	return nil
}
