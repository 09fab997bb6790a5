package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Mavwarf/appicons/internal/config"
	"github.com/Mavwarf/appicons/internal/history"
	"github.com/Mavwarf/appicons/internal/icongen"
	"github.com/Mavwarf/appicons/internal/iconset"
	"github.com/Mavwarf/appicons/internal/manifest"
	"github.com/Mavwarf/appicons/internal/mqtt"
	"github.com/Mavwarf/appicons/internal/paths"
	"github.com/Mavwarf/appicons/internal/release"
	"github.com/Mavwarf/appicons/internal/status"
)

// iconsCmd generates each platform independently and exits 1 if any of
// them failed.
func iconsCmd(platforms []string, opts runOpts) {
	cfg, err := loadAndValidate(opts.ConfigPath)
	if err != nil {
		fatal("%v", err)
	}

	var store history.Store
	if cfg.History && !opts.DryRun {
		store = openHistory()
		if store != nil {
			defer store.Close()
		}
	}

	marks := status.For(os.Stdout)
	ok := true
	for _, p := range platforms {
		if !generatePlatform(os.Stdout, marks, cfg, p, opts, store) {
			ok = false
		}
	}
	if !ok {
		os.Exit(1)
	}
}

// generatePlatform renders one platform's icon set and reports whether
// every output was written.
func generatePlatform(w io.Writer, m status.Marks, cfg config.Config, platform string, opts runOpts, store history.Store) bool {
	set, found := iconset.ByName(platform)
	if !found {
		fmt.Fprintf(w, "%s unknown platform %q\n", m.Fail, platform)
		return false
	}
	return generateSet(w, m, cfg, set, opts, store)
}

// generateSet validates set and renders it into the platform's output
// root. An invalid set fails before the source is read.
func generateSet(w io.Writer, m status.Marks, cfg config.Config, set iconset.Set, opts runOpts, store history.Store) bool {
	platform := set.Platform
	if err := set.Validate(); err != nil {
		fmt.Fprintf(w, "%s %v\n", m.Fail, err)
		return false
	}
	dir, err := cfg.OutputDir(platform)
	if err != nil {
		fmt.Fprintf(w, "%s %v\n", m.Fail, err)
		return false
	}
	dir = resolve(opts.Project, dir)
	src := sourcePath(cfg, opts)

	for _, d := range set.Duplicates() {
		fmt.Fprintf(os.Stderr, "warning: %s: %s listed more than once, last entry wins\n", platform, d)
	}

	if opts.DryRun {
		printPlan(w, set, src, dir)
		return true
	}

	fmt.Fprintf(w, "%s Creating %s icons...\n", m.Start, platform)
	res, err := icongen.Generate(src, set, dir)
	if err != nil {
		fmt.Fprintf(w, "%s %s: %v\n", m.Fail, platform, err)
		if store != nil {
			if _, lerr := store.LogFatal(platform, src, err); lerr != nil {
				fmt.Fprintf(os.Stderr, "history: %v\n", lerr)
			}
		}
		notify(cfg, mqtt.GenerationEvent(platform, src, nil, err))
		return false
	}

	for _, o := range res.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s %v\n", m.Fail, o.Err)
			continue
		}
		fmt.Fprintf(w, "%s Created %s (%dx%d)\n", m.OK, o.Path, o.Width, o.Height)
	}

	ok := res.OK()
	if platform == iconset.IOS {
		p, err := manifest.Write(set, dir)
		if err != nil {
			fmt.Fprintf(w, "%s %v\n", m.Fail, err)
			ok = false
		} else {
			fmt.Fprintf(w, "%s Updated %s\n", m.OK, p)
		}
	}

	fmt.Fprintf(w, "%s: %d/%d icons written to %s\n", platform, len(res.Written()), res.Attempted, dir)

	if store != nil {
		if _, err := store.LogGeneration(res, src); err != nil {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
		}
	}
	notify(cfg, mqtt.GenerationEvent(platform, src, res, nil))
	return ok
}

// printPlan lists the outputs a run would produce.
func printPlan(w io.Writer, set iconset.Set, src, dir string) {
	fmt.Fprintf(w, "%s: %s -> %s\n", set.Platform, src, dir)
	for _, sp := range set.Specs {
		wpx, hpx := sp.Pixels()
		fmt.Fprintf(w, "  %-36s %dx%d\n", sp.Path, wpx, hpx)
	}
	if set.Platform == iconset.IOS {
		fmt.Fprintf(w, "  %-36s (%d entries)\n", manifest.FileName, len(manifest.Build(set).Images))
	}
}

func releaseCmd(opts runOpts) {
	cfg, err := loadAndValidate(opts.ConfigPath)
	if err != nil {
		fatal("%v", err)
	}

	marks := status.For(os.Stdout)
	fmt.Printf("%s Starting release build...\n", marks.Start)
	if cfg.Release.Package != "" {
		fmt.Printf("  Package: %s\n", cfg.Release.Package)
	}
	if cfg.Release.AppName != "" {
		fmt.Printf("  App name: %s\n", cfg.Release.AppName)
	}
	if cfg.Release.Version != "" {
		fmt.Printf("  Version: %s\n", cfg.Release.Version)
	}

	p := &release.Pipeline{
		Tool:    cfg.Release.Tool,
		Dir:     opts.Project,
		SkipIOS: cfg.Release.SkipIOS,
		Out:     os.Stdout,
		Marks:   marks,
	}

	err = p.CheckToolchain()
	if err == nil {
		err = p.Run()
	}
	if err == nil {
		fmt.Println("\nChecking build outputs...")
		arts := release.CheckOutputs(opts.Project, cfg.Release.SkipIOS)
		if !release.Report(os.Stdout, arts, marks) {
			err = errors.New("required build outputs missing")
		}
	}

	if cfg.History {
		if store := openHistory(); store != nil {
			note := "ok"
			if err != nil {
				note = err.Error()
			}
			if _, lerr := store.LogRelease(err == nil, note); lerr != nil {
				fmt.Fprintf(os.Stderr, "history: %v\n", lerr)
			}
			store.Close()
		}
	}
	notify(cfg, mqtt.ReleaseEvent(err))

	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("\n%s Release build completed successfully!\n", marks.OK)
}

func historyCmd(args []string) {
	store, err := history.NewSQLiteStore(paths.HistoryPath())
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	if len(args) > 0 {
		switch args[0] {
		case "clean":
			if len(args) < 2 {
				fatal("history clean requires a number of days")
			}
			days, err := strconv.Atoi(args[1])
			if err != nil || days < 1 {
				fatal("days must be a positive number")
			}
			n, err := store.Clean(days)
			if err != nil {
				fatal("%v", err)
			}
			fmt.Printf("Removed %d runs older than %d days\n", n, days)
			return
		case "clear":
			if err := store.Clear(); err != nil {
				fatal("%v", err)
			}
			fmt.Println("History cleared")
			return
		case "show":
			if len(args) < 2 {
				fatal("history show requires a run id")
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || id < 1 {
				fatal("run id must be a positive number")
			}
			outs, err := store.Outputs(id)
			if err != nil {
				fatal("%v", err)
			}
			if len(outs) == 0 {
				fmt.Printf("No outputs recorded for run %d\n", id)
				return
			}
			for _, o := range outs {
				fmt.Println(formatOutput(o))
			}
			return
		}
	}

	days := 0
	if len(args) > 0 {
		days, err = strconv.Atoi(args[0])
		if err != nil || days < 0 {
			fatal("days must be a non-negative number")
		}
	}
	runs, err := store.Runs(days)
	if err != nil {
		fatal("%v", err)
	}
	if len(runs) == 0 {
		fmt.Printf("No runs recorded in %s\n", store.Path())
		return
	}
	for _, r := range runs {
		fmt.Println(formatRun(r))
	}
}

// formatRun renders one history line.
func formatRun(r history.Run) string {
	ts := fmt.Sprintf("#%-4d %s", r.ID, r.Time.Format("2006-01-02 15:04:05"))
	switch r.Kind {
	case history.KindRelease:
		res := "ok"
		if r.Failed > 0 {
			res = "failed"
		}
		return fmt.Sprintf("%s  release  %s  %s", ts, res, r.Note)
	default:
		if r.Attempted == 0 && r.Note != "" {
			return fmt.Sprintf("%s  %-7s  error: %s", ts, r.Platform, r.Note)
		}
		return fmt.Sprintf("%s  %-7s  %d/%d written  %s", ts, r.Platform, r.Written, r.Attempted, r.Source)
	}
}

// formatOutput renders one file of a recorded icon run.
func formatOutput(o history.Output) string {
	if o.Error != "" {
		return fmt.Sprintf("  %s  error: %s", o.Path, o.Error)
	}
	return fmt.Sprintf("  %s  %dx%d", o.Path, o.Width, o.Height)
}

// openHistory opens the run history, or returns nil with a warning.
func openHistory() history.Store {
	s, err := history.NewSQLiteStore(paths.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		return nil
	}
	return s
}

// notify publishes ev when a broker is configured. Failures only warn.
func notify(cfg config.Config, ev mqtt.Event) {
	if !cfg.MQTT.Enabled() {
		return
	}
	if err := mqtt.Publish(cfg.MQTT, ev); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
