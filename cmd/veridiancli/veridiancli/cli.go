// Package veridiancli implements the veridian-cli operator tool.
package veridiancli

import (
	"flag"
	"fmt"
	"sort"

	"github.com/veridian-blockchain/veridian/errors"
)

// commandHelp stores the command descriptions
var commandHelp = map[string]string{
	"checkwork": "Verify (and optionally repair) cumulative chain work in a blockchain store",
}

// Command represents a CLI command configuration
type Command struct {
	Name        string
	Description string
	FlagSet     *flag.FlagSet
}

// setupCommand creates a new command with its flag set
func setupCommand(name string) *Command {
	cmd := &Command{
		Name:        name,
		Description: commandHelp[name],
		FlagSet:     flag.NewFlagSet(name, flag.ExitOnError),
	}

	return cmd
}

// printUsage prints all available commands and their descriptions
func printUsage() {
	fmt.Println("Usage: veridian-cli <command> [options]")
	fmt.Println("\nAvailable Commands:")

	commands := make([]string, 0, len(commandHelp))
	for cmd := range commandHelp {
		commands = append(commands, cmd)
	}

	sort.Strings(commands)

	for _, cmd := range commands {
		fmt.Printf("  %-20s %s\n", cmd, commandHelp[cmd])
	}

	fmt.Println("\nUse 'veridian-cli <command> --help' for more information about a command")
}

// Run dispatches the command line to a subcommand.
func Run(args []string) error {
	if len(args) < 1 {
		printUsage()
		return errors.NewInvalidArgumentError("no command given")
	}

	switch args[0] {
	case "checkwork":
		cmd := setupCommand("checkwork")
		dbURL := cmd.FlagSet.String("db", "", "Database URL (sqlite:///path/to.db or postgres://...)")
		dryRun := cmd.FlagSet.Bool("dry-run", true, "Report differences without updating the store")
		batchSize := cmd.FlagSet.Int("batch-size", 1000, "Number of rows per update transaction")
		startHeight := cmd.FlagSet.Uint("start-height", 0, "First height to check")
		endHeight := cmd.FlagSet.Uint("end-height", 0, "Last height to check (0 for chain tip)")

		if err := cmd.FlagSet.Parse(args[1:]); err != nil {
			return errors.NewInvalidArgumentError("failed to parse flags", err)
		}

		if *dbURL == "" {
			cmd.FlagSet.Usage()
			return errors.NewInvalidArgumentError("--db is required")
		}

		return checkChainwork(*dbURL, *dryRun, *batchSize, uint32(*startHeight), uint32(*endHeight))

	case "help", "-h", "--help":
		printUsage()
		return nil

	default:
		printUsage()
		return errors.NewInvalidArgumentError("unknown command %q", args[0])
	}
}
