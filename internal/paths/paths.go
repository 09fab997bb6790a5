package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	AppDirName      = "appicons"
	ConfigFileName  = "appicons-config.json"
	HistoryFileName = "appicons.db"
	DirPerm         = 0755
	FilePerm        = 0644
)

// AtomicWrite replaces path with data. The bytes go to a uniquely named
// temp file in the destination directory, which is then renamed over
// path, so readers never see a half-written icon. Missing parent
// directories are created.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, FilePerm)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// UserDir returns the per-user appicons directory, or "" when no home
// directory is known. APPDATA wins when set; otherwise Windows uses
// AppData\Roaming and everything else ~/.config.
func UserDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", AppDirName)
	}
	return filepath.Join(home, ".config", AppDirName)
}

// DataDir is UserDir with a temp-dir fallback, for files that must be
// written somewhere.
func DataDir() string {
	if d := UserDir(); d != "" {
		return d
	}
	return filepath.Join(os.TempDir(), AppDirName)
}

// HistoryPath returns the location of the run history database.
func HistoryPath() string {
	return filepath.Join(DataDir(), HistoryFileName)
}
