package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nao1215/corpuscrawl/internal/model"
)

// Format selects the artifact encoding.
type Format string

const (
	// FormatMarkdown writes <name>.md.
	FormatMarkdown Format = "markdown"
	// FormatJSON writes <name>.json.
	FormatJSON Format = "json"
	// FormatBoth writes both files.
	FormatBoth Format = "both"
)

// ErrUnknownFormat is returned for an unsupported Format.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrNameCollision is returned when no unique artifact name can be found
// for a URL.
var ErrNameCollision = errors.New("artifact name collision")

// ManifestFile records which URL owns each artifact name in the output
// directory. It is a dot-file so that no artifact name can shadow it.
const ManifestFile = ".artifacts.jsonl"

// reservedNames are artifact names used by other files in the output
// directory.
var reservedNames = map[string]bool{
	strings.TrimSuffix(FAQJSONFile, filepath.Ext(FAQJSONFile)): true,
	strings.TrimSuffix(FAQCSVFile, filepath.Ext(FAQCSVFile)):   true,
}

type manifestEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatMarkdown, FormatJSON, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want markdown, json or both)", ErrUnknownFormat, s)
	}
}

// Writer persists one document as an artifact.
type Writer interface {
	// Write stores doc and returns the path of the primary artifact.
	Write(doc *model.Document) (string, error)
}

// DirWriter writes artifacts into a directory. Distinct URLs always get
// distinct artifact names, also across runs sharing the directory.
type DirWriter struct {
	dir         string
	primaryHost string
	format      Format

	mu     sync.Mutex
	owners map[string]string // artifact name -> URL
}

var _ Writer = (*DirWriter)(nil)

// NewDirWriter creates a DirWriter. primaryHost is the host whose pages
// get unprefixed names.
func NewDirWriter(dir, primaryHost string, format Format) *DirWriter {
	if format == "" {
		format = FormatMarkdown
	}
	return &DirWriter{dir: dir, primaryHost: primaryHost, format: format}
}

// Dir returns the output directory.
func (w *DirWriter) Dir() string {
	return w.dir
}

// Write renders doc and writes it. With FormatBoth the Markdown path is
// returned.
func (w *DirWriter) Write(doc *model.Document) (string, error) {
	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	name, err := w.claim(doc.URL)
	if err != nil {
		return "", err
	}
	base := filepath.Join(w.dir, name)

	var primary string
	if w.format == FormatMarkdown || w.format == FormatBoth {
		var buf bytes.Buffer
		if err := WriteMarkdown(&buf, doc); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
		primary = base + ".md"
		if err := os.WriteFile(primary, buf.Bytes(), 0600); err != nil {
			return "", fmt.Errorf("failed to write artifact: %w", err)
		}
	}
	if w.format == FormatJSON || w.format == FormatBoth {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode document: %w", err)
		}
		data = append(data, '\n')
		path := base + ".json"
		if err := os.WriteFile(path, data, 0600); err != nil {
			return "", fmt.Errorf("failed to write artifact: %w", err)
		}
		if primary == "" {
			primary = path
		}
	}
	if primary == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, w.format)
	}
	return primary, nil
}

// claim returns the artifact name owned by rawURL, assigning and
// recording a new one when rawURL has none yet. A name already owned by
// another URL gets a digest of rawURL appended.
func (w *DirWriter) claim(rawURL string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.owners == nil {
		owners, err := readManifest(filepath.Join(w.dir, ManifestFile))
		if err != nil {
			return "", err
		}
		w.owners = owners
	}

	name := Filename(rawURL, w.primaryHost)
	for n := 4; ; n *= 2 {
		owner, taken := w.owners[name]
		if taken && owner == rawURL {
			return name, nil
		}
		if !taken && !reservedNames[name] {
			break
		}
		if n > 16 {
			return "", fmt.Errorf("%w: %s", ErrNameCollision, rawURL)
		}
		name = withDigest(Filename(rawURL, w.primaryHost), rawURL, n)
	}

	if err := appendManifest(filepath.Join(w.dir, ManifestFile), manifestEntry{Name: name, URL: rawURL}); err != nil {
		return "", err
	}
	w.owners[name] = rawURL
	return name, nil
}

func readManifest(path string) (map[string]string, error) {
	owners := make(map[string]string)
	f, err := os.Open(path) //nolint:gosec // Path is built from the configured output directory
	if err != nil {
		if os.IsNotExist(err) {
			return owners, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", ManifestFile, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e manifestEntry
		// A torn last line from an interrupted run is skipped.
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Name == "" {
			continue
		}
		owners[e.Name] = e.URL
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}
	return owners, nil
}

func appendManifest(path string, e manifestEntry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode manifest entry: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // Path is built from the configured output directory
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ManifestFile, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}
	return f.Close()
}
