package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rickchristie/lessongraph"
)

// WriteFile renders doc and writes it to dir/<basename>_<stamp>.<ext>, creating dir if
// needed. It returns the written path. A nil tp uses the system clock.
func WriteFile(
	dir, basename string,
	r Renderer,
	doc *Document,
	tp lessongraph.TimeProvider,
) (string, error) {
	if tp == nil {
		tp = lessongraph.NewDefaultTimeProvider()
	}
	basename = strings.TrimSpace(basename)
	if basename == "" {
		basename = "task"
	}

	data, err := r.Render(doc)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", basename, tp.Stamp(), r.Extension()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
