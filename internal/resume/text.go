package resume

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLineRun    = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings, collapses runs of spaces and tabs, drops
// trailing whitespace and limits blank lines to one in a row.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// ReadText reads resume text from r and cleans it.
func ReadText(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read resume text: %w", err)
	}
	return CleanText(string(content)), nil
}

// LoadText reads a plain-text resume file. A path of "-" reads stdin.
func LoadText(path string) (string, error) {
	if path == "-" {
		return ReadText(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resume file not found: %w", err)
		}
		return "", fmt.Errorf("failed to open resume file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadText(f)
}
