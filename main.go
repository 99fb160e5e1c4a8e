// tessera-demo drives the constraint-layout core interactively.
//
// It reads a pane-declaration config, feeds the declarations to the
// incremental constraint solver, and renders the solved layout as a
// Bubbletea TUI. Terminal resizes become edit-variable suggestions;
// number keys hide and unhide panes through the solver's hide protocol.
//
// Usage:
//
//	tessera-demo [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/tessera/config.toml)
//	-dump           Print the constraint and variable dump instead of launching the TUI
//	-verbose        Enable debug logging of solver activity
//	-version        Print version and exit
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"gitlab.com/tinyland/lab/tessera/pkg/config"
	"gitlab.com/tinyland/lab/tessera/pkg/layout"
	"gitlab.com/tinyland/lab/tessera/pkg/tui"
)

var version = "0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "", "path to configuration file")
		dump        = flag.Bool("dump", false, "print constraint/variable dump and exit")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tessera-demo %s\n", version)
		return
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "layout"})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	solver := layout.NewSolver(layout.NewVarNames())
	solver.SetLogger(logger)

	model, err := tui.NewModel(cfg, solver)
	if err != nil {
		logger.Fatal("declaring layout", "err", err)
	}

	if *dump {
		if err := model.Dump(os.Stdout, 120, 40); err != nil {
			logger.Fatal("solving layout", "err", err)
		}
		return
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal("running TUI", "err", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
