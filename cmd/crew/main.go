package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/crewdeck/crew/internal/datasource"
	"github.com/crewdeck/crew/pkg/config"
	"github.com/crewdeck/crew/pkg/debug"
	"github.com/crewdeck/crew/pkg/ui"
	"github.com/crewdeck/crew/pkg/version"
	"github.com/crewdeck/crew/pkg/watcher"
)

func main() {
	dataFlag := flag.String("data", "", "Path to an org data file (.db or .json)")
	dataDirFlag := flag.String("data-dir", "", "Directory to scan for org data files")
	startURL := flag.String("start-url", "", "App URL to open first (e.g. /app?project=3)")
	listSources := flag.Bool("list-sources", false, "List discovered data sources and exit")
	noWatch := flag.Bool("no-watch", false, "Disable live reload on data file changes")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: crew [options]")
		fmt.Println("\nA terminal client for crewdeck task boards.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("crew %s\n", version.Version)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		cfg = config.DefaultConfig()
	}

	if *listSources {
		sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
			DataDir:                dataDir(*dataDirFlag, cfg),
			ValidateAfterDiscovery: true,
			IncludeInvalid:         true,
			Logger:                 func(msg string) { debug.Log("%s", msg) },
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error discovering sources: %v\n", err)
			os.Exit(1)
		}
		for _, s := range sources {
			fmt.Println(s)
		}
		os.Exit(0)
	}

	dataPath, store, err := openStore(*dataFlag, *dataDirFlag, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening org data: %v\n", err)
		fmt.Fprintln(os.Stderr, "Point --data at an exported .db or .json file, or --data-dir at a directory of them.")
		os.Exit(1)
	}
	defer store.Close()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "crew is interactive; stdout must be a terminal")
		os.Exit(1)
	}

	var w *watcher.Watcher
	if !*noWatch {
		w, err = watcher.New(dataPath,
			watcher.WithOnError(func(err error) { debug.Log("watcher: %v", err) }),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("watcher disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	url := *startURL
	if url == "" {
		url = cfg.StartURL
	}
	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	m := ui.New(datasource.NewService(store), ui.Options{
		StartURL:  url,
		Watcher:   w,
		ExportDir: exportDir,
	})

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running crew: %v\n", err)
		os.Exit(1)
	}
}

func dataDir(flagVal string, cfg config.Config) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv("CREW_DATA_DIR"); v != "" {
		return v
	}
	return config.DataDir()
}

// openStore resolves the data source: an explicit --data path wins, then
// the configured path, then discovery over the data directory.
func openStore(dataFlag, dataDirFlag string, cfg config.Config) (string, datasource.Store, error) {
	path := dataFlag
	if path == "" {
		path = cfg.DataPath
	}
	if path != "" {
		store, err := datasource.Open(path)
		return path, store, err
	}

	sources, err := datasource.DiscoverSources(datasource.DiscoveryOptions{
		DataDir:                dataDir(dataDirFlag, cfg),
		ValidateAfterDiscovery: true,
		Logger:                 func(msg string) { debug.Log("%s", msg) },
	})
	if err != nil {
		return "", nil, err
	}
	best, err := datasource.SelectBestSource(sources)
	if err != nil {
		return "", nil, err
	}
	debug.Log("selected source: %s", best)
	store, err := datasource.OpenSource(best)
	return best.Path, store, err
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CREW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CREW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
