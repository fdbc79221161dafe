package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/akolanti/DocsRAG/internal/domain/docModel"
)

// The docs corpus uses ::: zone pivot blocks to carry per-language variants of
// the same section. Only the python flavored blocks hold content worth
// embedding, the rest is noise for retrieval.
var (
	nonPythonZoneRegex = regexp.MustCompile(`(?m)::: zone pivot="(?:[^"]*)"[\s\S]*?::: zone-end`)
	pythonZoneRegex    = regexp.MustCompile(`(?m)^::: zone pivot="programming-language-python"\s*$`)
	zoneEndRegex       = regexp.MustCompile(`(?m)^::: zone-end\s*$`)
)

func stripZonePivots(text string) string {
	text = nonPythonZoneRegex.ReplaceAllStringFunc(text, func(block string) string {
		if strings.Contains(block, `pivot="programming-language-python"`) {
			return block
		}
		return ""
	})
	text = pythonZoneRegex.ReplaceAllString(text, "")
	text = zoneEndRegex.ReplaceAllString(text, "")
	return text
}

// parseFrontmatter pulls title/description/author out of the YAML block
// between the first two "---" lines and returns the remaining body.
// Files without frontmatter come back with empty fields and the full body.
func parseFrontmatter(raw string) (map[string]string, string) {
	frontmatter := make(map[string]string)

	lines := strings.Split(raw, "\n")
	inFrontmatter := false
	bodyStart := 0

	for idx, line := range lines {
		if strings.TrimSpace(line) == "---" {
			if !inFrontmatter {
				inFrontmatter = true
				continue
			}
			bodyStart = idx + 1
			break
		}
		if inFrontmatter {
			key, value, found := strings.Cut(line, ":")
			if found {
				frontmatter[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
			}
		}
	}

	if bodyStart == 0 {
		//no closing delimiter, treat the whole file as body
		return map[string]string{}, raw
	}
	return frontmatter, strings.Join(lines[bodyStart:], "\n")
}

// ReadMarkdownDocument reads one markdown file into a Document, the id is the
// file's name so re-ingesting the same file keeps a stable identity.
func ReadMarkdownDocument(path string, name string) (docModel.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return docModel.Document{}, fmt.Errorf("failed to read markdown file: %w", err)
	}

	frontmatter, body := parseFrontmatter(string(raw))
	content := strings.TrimSpace(stripZonePivots(body))

	return docModel.Document{
		Id:                  name,
		Name:                name,
		Title:               frontmatter["title"],
		Description:         frontmatter["description"],
		Author:              frontmatter["author"],
		Content:             content,
		LastIngestTimestamp: time.Now(),
		ContentType:         docModel.MD,
	}, nil
}
