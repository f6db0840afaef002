package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status   *StatusCommand
	Report   *ReportCommand
	Insights *InsightsCommand
	Serve    *ServeCommand
	Export   *ExportCommand
	Import   *ImportCommand
	Purge    *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "mindful"
	parser.LongDescription = "Local digital-wellness tracking: scores, insights, and reports over your browsing activity."

	cmds := &commands{
		Status:   &StatusCommand{globals: &globals, version: version},
		Report:   &ReportCommand{globals: &globals, version: version},
		Insights: &InsightsCommand{globals: &globals, version: version},
		Serve:    &ServeCommand{globals: &globals, version: version},
		Export:   &ExportCommand{globals: &globals, version: version},
		Import:   &ImportCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("status", "Show tracker health and settings", "Show database statistics, today's counters, settings, and daemon liveness.", cmds.Status)
	parser.AddCommand("report", "Show today's wellness report", "Show today's wellness score, time totals, category breakdown, and top sites.", cmds.Report)
	parser.AddCommand("insights", "Show generated insights", "Show generated insights for the popup or analytics view.", cmds.Insights)
	parser.AddCommand("serve", "Run the ingest daemon", "Run the ingest daemon (local HTTP service) in the foreground.", cmds.Serve)
	parser.AddCommand("export", "Export all data as a backup", "Write the full tracker state as a JSON backup document.", cmds.Export)
	parser.AddCommand("import", "Import a backup", "Validate a JSON backup document and replace all tracker state with it.", cmds.Import)
	parser.AddCommand("purge", "Delete ALL Mindful data", "Delete ALL Mindful data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the Mindful CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("mindful %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
