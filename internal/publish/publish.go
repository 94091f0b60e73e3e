package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AntohaY/quicklists/internal/model"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteChecklist writes <toDir>/<checklist id>.md.
func WriteChecklist(c model.Checklist, items []model.ChecklistItem, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	outPath := filepath.Join(toDir, fileName(c.ID)+".md")
	if err := writeFile(outPath, []byte(RenderChecklistMarkdown(c, items)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

// fileName keeps a slug usable as a file name; slugs may contain any non-space
// character, including separators.
func fileName(id string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	if name := r.Replace(id); name != "" && name != "." && name != ".." {
		return name
	}
	return "checklist"
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

func itoa(n int) string { return strconv.Itoa(n) }
