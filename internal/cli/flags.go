package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand — show database statistics, today's counters, and settings.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ReportCommand — today's wellness report with breakdown and top sites.
type ReportCommand struct {
	Sites int `long:"sites" description:"Number of top sites to show" default:"5"`

	globals *GlobalFlags
	version string
}

// InsightsCommand — generated insights for a view.
type InsightsCommand struct {
	View string `long:"view" description:"Insight view: popup | analytics" default:"popup"`

	globals *GlobalFlags
	version string
}

// ServeCommand — run the ingest daemon in the foreground.
type ServeCommand struct {
	Port     int    `long:"port" description:"Override daemon port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}

// ExportCommand — write the backup JSON document.
type ExportCommand struct {
	Output string `long:"output" short:"o" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	version string
}

// ImportCommand — validate a backup document and replace all state.
type ImportCommand struct {
	Input string `long:"input" short:"i" description:"Read from file instead of stdin"`

	globals *GlobalFlags
	version string
}

// PurgeCommand — delete ALL Mindful data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
}
