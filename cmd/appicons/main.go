package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Mavwarf/appicons/internal/config"
	"github.com/Mavwarf/appicons/internal/iconset"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// runOpts holds the global flags.
type runOpts struct {
	ConfigPath string
	Source     string
	Project    string
	DryRun     bool
}

func main() {
	opts, args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := "all"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "all", iconset.Android, iconset.IOS, iconset.Web:
		iconsCmd(platformsFor(cmd), opts)
	case "release":
		releaseCmd(opts)
	case "history":
		historyCmd(args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		fmt.Fprintf(os.Stderr, "Run 'appicons help' for usage.\n")
		os.Exit(1)
	}
}

// parseArgs extracts global flags and returns the remaining arguments.
func parseArgs(args []string) (runOpts, []string, error) {
	opts := runOpts{Project: "."}
	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c", "--source", "-s", "--project", "-p":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("%s requires a value", args[i])
			}
			v := args[i+1]
			i++
			switch args[i-1] {
			case "--config", "-c":
				opts.ConfigPath = v
			case "--source", "-s":
				opts.Source = v
			default:
				opts.Project = v
			}
		case "--dry-run", "-n":
			opts.DryRun = true
		default:
			rest = append(rest, args[i])
		}
	}
	return opts, rest, nil
}

// platformsFor expands a command name to the platforms it covers.
func platformsFor(cmd string) []string {
	if cmd == "all" {
		return iconset.Platforms()
	}
	return []string{cmd}
}

// resolve joins p onto the project directory unless p is absolute.
func resolve(project, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(project, p)
}

// sourcePath picks the --source flag over the configured source.
func sourcePath(cfg config.Config, opts runOpts) string {
	if opts.Source != "" {
		return resolve(opts.Project, opts.Source)
	}
	return resolve(opts.Project, cfg.Source)
}

func loadAndValidate(configPath string) (config.Config, error) {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func printVersion() {
	fmt.Printf("appicons %s (%s) %s/%s\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("appicons %s - Generate app icons and build release artifacts\n", version)
	fmt.Println(`
Usage:
  appicons [options] [command]

Options:
  --config, -c <path>    Path to appicons-config.json
  --source, -s <path>    Source logo (default: config "source")
  --project, -p <dir>    Project directory (default: .)
  --dry-run, -n          List what would be generated without writing

Commands:
  all                    Generate Android, iOS and web icons (default)
  android                Generate Android launcher icons
  ios                    Generate iOS icons and Contents.json
  web                    Generate favicon and web app icons
  release                Clean, fetch dependencies and build release artifacts
  history [days]         List recorded runs (0 = all)
  history show <id>      List the files written by a run
  history clean <days>   Remove runs older than N days
  history clear          Remove all recorded runs
  version, -V            Show version and build date
  help, -h, --help       Show this help message

Config resolution:
  1. --config <path>                      (explicit)
  2. ./appicons-config.json               (project)
  3. appicons-config.json next to binary  (portable)
  4. ~/.config/appicons/appicons-config.json
  Built-in defaults are used when no file is found.

Examples:
  appicons                          Regenerate every platform
  appicons ios                      Regenerate iOS icons only
  appicons -s brand/logo.png web    Use a different source logo
  appicons release                  Build APK, AAB and iOS app`)
}
