package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"shpattr/internal/attrib"
	"shpattr/internal/config"
	"shpattr/internal/database"
	"shpattr/internal/host"
)

const usage = `shpattr - shapefile attribute table toolkit

Usage:
  shpattr reinit [-i <file.shp>] [--wd <dir>]
  shpattr export [-i <file.shp>] [--table <name>] [--wd <dir>]

reinit rebuilds the attribute table next to the geometry file with a single
sequential FID column. export copies an attribute table into Oracle. With no
input file on a terminal, an interactive picker lists the .shp files under
the working directory.

Options:
  -i, --input    Input vector file (.shp)
      --wd       Working directory used to resolve relative paths
      --table    Table name for export (default: derived from the file name)
      --config   Path to shpattr.yaml
  -q, --quiet    Suppress progress output
  -h, --help     Show this help
`

var errHelp = errors.New("help requested")

type options struct {
	command string
	input   string
	table   string
	wd      string
	cfgPath string
	quiet   bool
}

// parseArgs understands both "--key value" and "--key=value", the way most
// GIS tool runners do. A bare non-flag argument is the input file.
func parseArgs(args []string) (*options, error) {
	opts := &options{command: "reinit"}
	rest := args
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		opts.command = rest[0]
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		key, val := arg, ""
		if eq := strings.Index(arg, "="); eq >= 0 {
			key, val = arg[:eq], arg[eq+1:]
		}
		next := func() (string, error) {
			if val != "" {
				return val, nil
			}
			if i+1 >= len(rest) {
				return "", fmt.Errorf("missing value for %s", key)
			}
			i++
			return rest[i], nil
		}

		var err error
		switch key {
		case "-i", "--input":
			opts.input, err = next()
		case "--wd":
			opts.wd, err = next()
		case "--table":
			opts.table, err = next()
		case "--config":
			opts.cfgPath, err = next()
		case "-q", "--quiet":
			opts.quiet = true
		case "-h", "--help":
			return nil, errHelp
		default:
			if !strings.HasPrefix(key, "-") && opts.input == "" {
				opts.input = arg
			} else {
				err = fmt.Errorf("unknown option %q", key)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// resolveInput resolves relative inputs against the working directory and
// assumes .shp when no extension was typed.
func resolveInput(input, wd string) string {
	if filepath.Ext(input) == "" {
		input += ".shp"
	}
	if !filepath.IsAbs(input) && wd != "" {
		input = filepath.Join(wd, input)
	}
	return input
}

func terminalOptions(cfg *config.Config, opts *options) []host.TerminalOption {
	var topts []host.TerminalOption
	if opts.quiet {
		topts = append(topts, host.Quiet())
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "shpattr: cannot open log file: %v\n", err)
		} else {
			logger := zerolog.New(zerolog.MultiLevelWriter(os.Stderr, f)).With().Timestamp().Logger()
			topts = append(topts, host.WithLogger(logger))
		}
	}
	return topts
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, errHelp) {
			fmt.Print(usage)
			return
		}
		fmt.Fprintf(os.Stderr, "shpattr: %v\n%s", err, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shpattr: %v\n", err)
		os.Exit(1)
	}
	if opts.wd == "" {
		opts.wd = cfg.WorkingDir
	}

	h := host.NewTerminal(terminalOptions(cfg, opts)...)

	// Ctrl-C requests cooperative cancellation; the running tool honours it
	// at the next progress boundary.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		h.Cancel()
		signal.Stop(sigCh)
	}()

	// No input given: fall back to the interactive picker when stdin is a
	// terminal, otherwise run with no arguments so the tool reports the
	// missing parameter itself.
	input := opts.input
	if input == "" {
		if picked, ok := pickShapefile(opts.wd); ok {
			input = picked
		}
	}
	if input != "" {
		input = resolveInput(input, opts.wd)
		if cfg.Verbose {
			h.ShowMessage("Input vector file: " + input)
		}
	}

	switch opts.command {
	case "reinit", "reinitialize":
		var args []string
		if input != "" {
			args = []string{input}
		}
		attrib.Run(h, args)
	case "export":
		db, err := database.New(database.DBConfig{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			Service:        cfg.Database.Service,
			Username:       cfg.Database.Username,
			Password:       cfg.Database.Password,
			WalletLocation: cfg.Database.WalletLocation,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "shpattr: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		attrib.RunExport(h, db, input, opts.table)
	default:
		fmt.Fprintf(os.Stderr, "shpattr: unknown command %q\n%s", opts.command, usage)
		os.Exit(2)
	}
}
