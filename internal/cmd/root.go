package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`
	Config  string `help:"Path to the config file (json, json5 or yaml)." type:"path" env:"JOBMAIL_CONFIG"`
	EnvFile string `name:"env-file" help:"Load environment variables from this file." default:".env" type:"path"`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Run       RunCmd     `cmd:"" help:"Run the outreach pipeline once for a mode."`
	Scrape    ScrapeCmd  `cmd:"" help:"Scrape and filter postings for a mode without sending."`
	Preview   PreviewCmd `cmd:"" help:"Compose one email and print it."`
	History   HistoryCmd `cmd:"" help:"Show outreach history and run statistics."`
	Serve     ServeCmd   `cmd:"" help:"Run both modes on their cron schedules and serve health and metrics."`
	Seen      SeenCmd    `cmd:"" help:"Seen postings utilities."`
	Secrets   SecretsCmd `cmd:"" help:"Store credentials in the OS keyring."`
	ConfigCmd ConfigCmd  `cmd:"" name:"config" help:"Manage configuration."`
	Proxies   ProxiesCmd `cmd:"" help:"Proxy utilities."`
	Version   VersionCmd `cmd:"" help:"Print version."`
}

func NewCLI() *CLI {
	return &CLI{}
}
