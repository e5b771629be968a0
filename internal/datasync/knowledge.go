package datasync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/54b3r/shopsense-go/internal/rag"
)

// knowledgeExtensions lists the file types accepted as knowledge documents.
var knowledgeExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// LoadKnowledgeFiles reads knowledge documents from path. A directory is
// walked recursively for markdown and plain-text files; a single file is
// loaded directly. Store policies, FAQ answers, and shipping/warranty terms
// live here — one file per topic.
func LoadKnowledgeFiles(path string) ([]rag.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("datasync: knowledge path %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && knowledgeExtensions[strings.ToLower(filepath.Ext(p))] {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("datasync: walk knowledge dir %s: %w", path, err)
		}
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("datasync: no .md or .txt knowledge files under %s", path)
	}

	docs := make([]rag.Document, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("datasync: read knowledge file %s: %w", f, err)
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		docs = append(docs, knowledgeDocument(filepath.Base(f), content))
	}
	return docs, nil
}

// knowledgeDocument renders one knowledge file into its embeddable document.
// The ID is derived from the file name so re-syncing an edited policy
// overwrites the old version instead of duplicating it.
func knowledgeDocument(name, content string) rag.Document {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	title := base
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		title = strings.TrimSpace(strings.TrimLeft(line, "# "))
		break
	}

	return rag.Document{
		ID:      "knowledge_" + slugify(base),
		Content: content,
		Metadata: map[string]string{
			"title":  title,
			"source": name,
		},
	}
}

// SyncKnowledge embeds and upserts the given knowledge documents. It runs
// separately from Run: knowledge comes from curated files, not from the
// storefront API.
func (p *Pipeline) SyncKnowledge(ctx context.Context, docs []rag.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	if err := p.store.Upsert(ctx, rag.CollectionKnowledge, docs); err != nil {
		return 0, fmt.Errorf("datasync: upsert knowledge: %w", err)
	}
	return len(docs), nil
}

// slugify lowercases s and collapses every non-alphanumeric run into a
// single hyphen, producing a stable document-ID fragment.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
