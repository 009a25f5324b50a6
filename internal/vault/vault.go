// Package vault implements the document-vault storage collaborator: markdown
// documents with YAML frontmatter in kind directories on a hackpadfs
// filesystem. The core engines only see the read/write/list contract plus
// the record conversions; they never touch files.
package vault

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hack-pad/hackpadfs"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Document kinds, one directory each.
const (
	KindPeople = "people"
	KindPlaces = "places"
)

// Document is one vault entry: structured frontmatter plus free markdown.
type Document struct {
	ID     string
	Fields map[string]any
	Body   string
}

// Vault is a filesystem-backed document store. Writes are atomic per
// document and deliberately not transactional across documents; engines
// that batch-write are designed to be safely re-runnable instead.
type Vault struct {
	fs  hackpadfs.FS
	log *zap.Logger
	mu  sync.RWMutex
}

// Open wraps a filesystem as a vault. The logger may be nil.
func Open(fsys hackpadfs.FS, log *zap.Logger) *Vault {
	if log == nil {
		log = zap.NewNop()
	}
	return &Vault{fs: fsys, log: log}
}

// FS exposes the underlying filesystem for sibling stores (spatial index,
// caches) that live inside the vault directory.
func (v *Vault) FS() hackpadfs.FS {
	return v.fs
}

func docPath(kind, id string) string {
	return path.Join(kind, id+".md")
}

// Read loads one document.
func (v *Vault) Read(kind, id string) (*Document, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.read(kind, id)
}

func (v *Vault) read(kind, id string) (*Document, error) {
	content, err := hackpadfs.ReadFile(v.fs, docPath(kind, id))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", kind, id, err)
	}
	fields, body, err := decodeFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", kind, id, err)
	}
	return &Document{ID: id, Fields: fields, Body: body}, nil
}

// Write stores one document, creating the kind directory as needed.
func (v *Vault) Write(kind, id string, doc *Document) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.write(kind, id, doc)
}

func (v *Vault) write(kind, id string, doc *Document) error {
	if err := hackpadfs.MkdirAll(v.fs, kind, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", kind, err)
	}
	content, err := encodeFrontmatter(doc.Fields, doc.Body)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, id, err)
	}
	if err := hackpadfs.WriteFullFile(v.fs, docPath(kind, id), content, 0644); err != nil {
		return fmt.Errorf("write %s/%s: %w", kind, id, err)
	}
	v.log.Debug("wrote document", zap.String("kind", kind), zap.String("id", id))
	return nil
}

// List returns the document ids of a kind, sorted. A missing kind directory
// is an empty vault section, not an error.
func (v *Vault) List(kind string) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.list(kind)
}

func (v *Vault) list(kind string) ([]string, error) {
	entries, err := hackpadfs.ReadDir(v.fs, kind)
	if err != nil {
		if errors.Is(err, hackpadfs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(ids)
	return ids, nil
}

// decodeFrontmatter splits "---\n<yaml>\n---\n<body>". A document without a
// frontmatter block is all body.
func decodeFrontmatter(content []byte) (map[string]any, string, error) {
	text := string(content)
	if !strings.HasPrefix(text, "---\n") {
		return nil, text, nil
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, text, nil
	}
	block := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(block), &fields); err != nil {
		return nil, "", fmt.Errorf("frontmatter yaml: %w", err)
	}
	return fields, body, nil
}

func encodeFrontmatter(fields map[string]any, body string) ([]byte, error) {
	if len(fields) == 0 {
		return []byte(body), nil
	}
	block, err := yaml.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(block)
	b.WriteString("---\n")
	if body != "" {
		b.WriteString(body)
	}
	return []byte(b.String()), nil
}
