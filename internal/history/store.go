package history

import (
	"time"

	"github.com/Mavwarf/appicons/internal/icongen"
)

// Kind distinguishes what a run did.
type Kind string

const (
	KindIcons   Kind = "icons"
	KindRelease Kind = "release"
)

// Run is one recorded invocation.
type Run struct {
	ID        int64
	Time      time.Time
	Kind      Kind
	Platform  string
	Source    string
	Attempted int
	Written   int
	Failed    int
	Note      string
}

// Output is one file recorded for an icon run.
type Output struct {
	Path   string
	Width  int
	Height int
	Error  string // empty on success
}

// Store abstracts run history storage.
type Store interface {
	// Write
	LogGeneration(res *icongen.Result, source string) (int64, error)
	LogFatal(platform, source string, err error) (int64, error)
	LogRelease(ok bool, note string) (int64, error)

	// Read
	Runs(days int) ([]Run, error) // 0 = all
	Outputs(runID int64) ([]Output, error)

	// Maintenance
	Clean(days int) (int, error) // remove runs older than days, return removed count
	Clear() error

	Path() string
	Close() error
}

// DayCutoff returns midnight local time, days-1 days ago.
// days=1 means today, days=2 means yesterday and today.
func DayCutoff(days int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()-days+1, 0, 0, 0, 0, now.Location())
}
