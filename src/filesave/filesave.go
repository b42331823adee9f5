// Package filesave implements the default action of a save outcome: naming
// the file, asking the user where to put it and writing the bytes.
package filesave

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Prompter asks the user for a destination path. ok is false when the user
// cancelled or chose no path.
type Prompter interface {
	PromptSavePath(ctx context.Context, defaultPath string) (path string, ok bool, err error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, defaultPath string) (string, bool, error)

func (f PrompterFunc) PromptSavePath(ctx context.Context, defaultPath string) (string, bool, error) {
	return f(ctx, defaultPath)
}

// Filename returns the default save name for t: YYYYMMDDHHmmssSSS.png in
// t's location.
func Filename(t time.Time) string {
	return fmt.Sprintf("%s%03d.png", t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond))
}

// Write stores data verbatim at path, creating missing parent directories.
func Write(fs afero.Fs, path string, data []byte) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DefaultDir is where the suggested file lands when the prompt does not pick
// a directory itself: the user's Pictures folder if it exists, else home.
func DefaultDir(fs afero.Fs) string {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	pictures := filepath.Join(home, "Pictures")
	if ok, _ := afero.DirExists(fs, pictures); ok {
		return pictures
	}
	return home
}
