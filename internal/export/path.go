package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// OutputPath returns where the CSV for edlPath is written: next to the EDL
// with a .csv extension, or inside outDir when one is given.
func OutputPath(edlPath, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(edlPath), filepath.Ext(edlPath)) + ".csv"
	if outDir == "" {
		return filepath.Join(filepath.Dir(edlPath), name)
	}
	return filepath.Join(outDir, name)
}

// FileStem turns an arbitrary name into a safe file name stem. Control
// characters are dropped and anything outside letters, digits and "-_." is
// replaced with an underscore.
func FileStem(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	stem := strings.Trim(b.String(), ".")
	if maxLen > 0 {
		if runes := []rune(stem); len(runes) > maxLen {
			stem = string(runes[:maxLen])
		}
	}
	return stem
}

// ValidateOutputDir checks that dir is a clean, existing directory.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output directory is required")
	}

	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("output directory cannot contain path traversal")
		}
	}
	if filepath.Clean(dir) != dir {
		return fmt.Errorf("output directory must be a clean path")
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist", dir)
		}
		return fmt.Errorf("invalid output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s is not a directory", dir)
	}
	return nil
}
