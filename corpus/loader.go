package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sweetpotato0/docqa/corpus/preprocess"
	"github.com/sweetpotato0/docqa/pkg/logging"
)

// LoadDirectory reads every .txt and .html file directly under dir into a
// Document. The file name becomes the document ID so that answers can cite it
// verbatim. HTML files are reduced to plain text before indexing.
func LoadDirectory(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory %s: %w", dir, err)
	}
	logger := logging.WithComponent("corpus")

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".txt" && ext != ".html" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read corpus file %s: %w", name, err)
		}
		content := string(raw)
		if ext == ".html" {
			content, err = preprocess.HTMLToText(content)
			if err != nil {
				return nil, fmt.Errorf("clean html file %s: %w", name, err)
			}
		}
		docs = append(docs, Document{
			ID:      name,
			Title:   strings.TrimSuffix(name, ext),
			Content: content,
		})
	}
	logger.Info("corpus loaded", "dir", dir, "documents", len(docs))
	return docs, nil
}
