package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// WriteTreeReport walks outputRoot and writes a text listing of the saved
// menu directories and files to reportPath.
func WriteTreeReport(outputRoot, reportPath string, log *logrus.Entry) error {
	if _, err := os.Stat(outputRoot); os.IsNotExist(err) {
		return fmt.Errorf("output root '%s' does not exist: %w", outputRoot, err)
	} else if err != nil {
		return fmt.Errorf("error checking output root '%s': %w", outputRoot, err)
	}

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", reportPath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	if _, err = fmt.Fprintf(writer, "Output layout for: %s\n", outputRoot); err != nil {
		return err
	}
	if _, err = fmt.Fprintf(writer, "%s\n\n", strings.Repeat("=", 19+len(outputRoot))); err != nil {
		return err
	}
	if _, err = fmt.Fprintf(writer, "%s/\n", filepath.Base(outputRoot)); err != nil {
		return err
	}

	log.Debugf("Generating tree report for: %s", outputRoot)
	if err = walkDirRecursive(writer, outputRoot, ""); err != nil {
		log.Errorf("Tree walk failed for '%s': %v", outputRoot, err)
		return fmt.Errorf("error generating tree report for '%s': %w", outputRoot, err)
	}

	return nil
}

// walkDirRecursive writes one indented line per entry, directories first.
func walkDirRecursive(writer io.Writer, dirPath string, currentIndent string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read directory '%s': %w", dirPath, err)
	}

	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		aIsDir := a.IsDir()
		bIsDir := b.IsDir()
		if aIsDir && !bIsDir {
			return -1
		}
		if !aIsDir && bIsDir {
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	for i, entry := range entries {
		isLast := i == len(entries)-1

		connector := entryPrefix
		if isLast {
			connector = lastEntryPrefix
		}

		if _, err := fmt.Fprintf(writer, "%s%s%s\n", currentIndent, connector, entry.Name()); err != nil {
			return err
		}

		if entry.IsDir() {
			nextIndent := currentIndent
			if isLast {
				nextIndent += indentPrefix
			} else {
				nextIndent += verticalLine
			}

			if err := walkDirRecursive(writer, filepath.Join(dirPath, entry.Name()), nextIndent); err != nil {
				return err
			}
		}
	}
	return nil
}
