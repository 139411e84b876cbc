// Package backup relocates original videos into a backup directory before
// any conversion starts. Outputs are later written back to the original
// paths, so "processed" and "backup" never collide.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrBackupCollision is returned when both the backup directory and its
// "_old" sibling already exist. Cascade-renaming old backups would silently
// stack generations, so this is a configuration error the operator resolves.
var ErrBackupCollision = errors.New("backup directory and its _old sibling both exist; move or remove one")

// Relocation records the outcome of a relocate call.
type Relocation struct {
	BackupDir string
	// Moves maps each original path to its new backup path. The original
	// path doubles as the output path for the converted file.
	Moves map[string]string
	// RotatedOld is the path the pre-existing backup directory was renamed
	// to, empty when there was none.
	RotatedOld string
}

// Relocate moves the given files out of sourceDir into destDir. A
// pre-existing destDir is rotated to "<destDir>_old" first; if that name is
// also taken, Relocate fails with [ErrBackupCollision] before touching
// anything. Files are renamed, never copied, so no file ever exists in both
// directories at once.
//
// Any rename failure aborts the batch: processing must not proceed on a
// directory whose originals could not be safely archived.
func Relocate(destDir string, files []string) (*Relocation, error) {
	oldDir := destDir + "_old"

	rotated := ""
	if _, err := os.Stat(destDir); err == nil {
		if _, err := os.Stat(oldDir); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrBackupCollision, oldDir)
		}
		if err := os.Rename(destDir, oldDir); err != nil {
			return nil, fmt.Errorf("rotate previous backup %s: %w", destDir, err)
		}
		rotated = oldDir
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat backup directory %s: %w", destDir, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory %s: %w", destDir, err)
	}

	rel := &Relocation{
		BackupDir:  destDir,
		Moves:      make(map[string]string, len(files)),
		RotatedOld: rotated,
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	for _, src := range sorted {
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("move %s to backup: %w", src, err)
		}
		rel.Moves[src] = dst
	}
	return rel, nil
}
