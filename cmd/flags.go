package cmd

import (
	"flag"
)

type Flags struct {
	ConfigPath string
	Version    bool
}

// ParseFlags reads the global flags and returns them with the chosen
// subcommand: crawl, download, import, translate, migrate or serve.
// No subcommand means the interactive menu.
func ParseFlags() (Flags, string) {
	flags := Flags{}

	flag.StringVar(&flags.ConfigPath, "c", "", "Path to config file")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file")
	flag.BoolVar(&flags.Version, "v", false, "Display version information")
	flag.BoolVar(&flags.Version, "version", false, "Display version information")

	flag.Parse()

	args := flag.Args()
	var subcommand string
	if len(args) > 0 {
		subcommand = args[0]
	}

	return flags, subcommand
}
