package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"buildplan/internal/plan"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// File is one rendered artifact.
type File struct {
	Filename string
	Content  []byte
}

// DockerfilesFor renders one Dockerfile per plan.
func DockerfilesFor(plans []plan.BuildPlan, opts Options) ([]File, error) {
	files := make([]File, 0, len(plans))

	for _, p := range plans {
		content, err := DockerfileWithOptions(p, opts)
		if err != nil {
			return nil, err
		}

		files = append(files, File{Filename: Filename(p.VariantName), Content: content})
	}

	return files, nil
}

// WriteFiles writes all rendered files to the output directory.
// It creates the directory if it doesn't exist.
func WriteFiles(files []File, outputDir string) error {
	err := os.MkdirAll(outputDir, dirPerm)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, file := range files {
		outputPath := filepath.Join(outputDir, file.Filename)

		err := os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}

// UnifiedDiff returns a unified diff between two rendered artifacts, or an
// empty string when they are identical.
func UnifiedDiff(from File, to File) (string, error) {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(from.Content)),
		B:        difflib.SplitLines(string(to.Content)),
		FromFile: from.Filename,
		ToFile:   to.Filename,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diffing %s and %s: %w", from.Filename, to.Filename, err)
	}

	return out, nil
}
