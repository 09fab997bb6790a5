// Package release drives the release build of the app through the
// external toolchain. Each stage is one command; the pipeline stops at
// the first failure.
package release

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Mavwarf/appicons/internal/status"
)

// Executor runs name with args in dir and returns combined output.
type Executor func(dir, name string, args ...string) ([]byte, error)

// execCommand is the default Executor.
func execCommand(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Stage is one toolchain invocation.
type Stage struct {
	Name string
	Args []string
	IOS  bool // skipped when the pipeline has SkipIOS set
}

// Stages lists the release stages in the order they run.
var Stages = []Stage{
	{Name: "Cleaning project", Args: []string{"clean"}},
	{Name: "Getting dependencies", Args: []string{"pub", "get"}},
	{Name: "Building Android APK", Args: []string{"build", "apk", "--release"}},
	{Name: "Building Android App Bundle", Args: []string{"build", "appbundle", "--release"}},
	{Name: "Building iOS release", Args: []string{"build", "ios", "--release"}, IOS: true},
}

// StageError reports a stage whose command failed.
type StageError struct {
	Stage  string
	Output string
	Err    error
}

func (e *StageError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v\n%s", e.Stage, e.Err, e.Output)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline runs the release stages in Dir using Tool.
type Pipeline struct {
	Tool    string
	Dir     string
	SkipIOS bool
	Exec    Executor
	Out     io.Writer

	// Marks prefix progress lines; the zero value means status.Plain.
	Marks status.Marks
}

func (p *Pipeline) exec() Executor {
	if p.Exec != nil {
		return p.Exec
	}
	return execCommand
}

func (p *Pipeline) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p *Pipeline) marks() status.Marks {
	return status.OrPlain(p.Marks)
}

// CheckToolchain verifies the tool is on PATH and answers --version.
func (p *Pipeline) CheckToolchain() error {
	if p.Exec == nil {
		if _, err := exec.LookPath(p.Tool); err != nil {
			return fmt.Errorf("%s not found on PATH: %w", p.Tool, err)
		}
	}
	if out, err := p.exec()(p.Dir, p.Tool, "--version"); err != nil {
		return &StageError{Stage: "Checking " + p.Tool, Output: string(out), Err: err}
	}
	fmt.Fprintf(p.out(), "%s %s is installed\n", p.marks().OK, p.Tool)
	return nil
}

// Run executes every stage in order and stops at the first failure,
// returning a *StageError.
func (p *Pipeline) Run() error {
	w, m := p.out(), p.marks()
	for _, st := range Stages {
		if st.IOS && p.SkipIOS {
			fmt.Fprintf(w, "%s %s skipped\n", m.Warn, st.Name)
			continue
		}
		fmt.Fprintf(w, "%s %s...\n", m.Start, st.Name)
		out, err := p.exec()(p.Dir, p.Tool, st.Args...)
		if err != nil {
			fmt.Fprintf(w, "%s %s failed\n", m.Fail, st.Name)
			return &StageError{Stage: st.Name, Output: string(out), Err: err}
		}
		fmt.Fprintf(w, "%s %s completed successfully\n", m.OK, st.Name)
	}
	return nil
}

// Artifact is an expected build output.
type Artifact struct {
	Label    string
	Path     string // relative to the project directory
	Required bool
	Exists   bool
	Size     int64 // bytes; directories report 0
}

// SizeMB returns the size in megabytes.
func (a Artifact) SizeMB() float64 {
	return float64(a.Size) / (1024 * 1024)
}

// Expected build outputs, relative to the project directory.
const (
	APKPath    = "build/app/outputs/flutter-apk/app-release.apk"
	AABPath    = "build/app/outputs/bundle/release/app-release.aab"
	IOSAppPath = "build/ios/iphoneos/Runner.app"
)

// CheckOutputs stats the expected artifacts under dir.
func CheckOutputs(dir string, skipIOS bool) []Artifact {
	arts := []Artifact{
		{Label: "Android APK", Path: APKPath, Required: true},
		{Label: "Android AAB", Path: AABPath, Required: true},
	}
	if !skipIOS {
		arts = append(arts, Artifact{Label: "iOS app", Path: IOSAppPath})
	}
	for i := range arts {
		fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(arts[i].Path)))
		if err != nil {
			continue
		}
		arts[i].Exists = true
		if !fi.IsDir() {
			arts[i].Size = fi.Size()
		}
	}
	return arts
}

// Report prints one line per artifact and returns false if a required
// artifact is missing.
func Report(w io.Writer, arts []Artifact, m status.Marks) bool {
	m = status.OrPlain(m)
	ok := true
	for _, a := range arts {
		switch {
		case a.Exists && a.Size > 0:
			fmt.Fprintf(w, "%s %s created: %s (%.1f MB)\n", m.OK, a.Label, a.Path, a.SizeMB())
		case a.Exists:
			fmt.Fprintf(w, "%s %s created: %s\n", m.OK, a.Label, a.Path)
		case a.Required:
			ok = false
			fmt.Fprintf(w, "%s %s not found: %s\n", m.Fail, a.Label, a.Path)
		default:
			fmt.Fprintf(w, "%s %s not found: %s\n", m.Warn, a.Label, a.Path)
		}
	}
	return ok
}
