package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported video file extensions (lowercase, with leading dot). The output
// writer produces mp4v streams, so discovery sticks to the mp4 family.
var videoExtensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mov": true,
}

// Discover lists video files in the top level of inputDir, sorted
// lexicographically for deterministic submission order. It is deliberately
// non-recursive: the backup directory lives inside the input directory, and
// nested content is not part of a batch.
func Discover(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if videoExtensions[ext] {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
