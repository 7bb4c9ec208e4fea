// Package preview renders a resolved file for display in the web UI.
// Markdown becomes HTML, images become data URIs, small text files are
// passed through, and anything else is described by its metadata.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MaxBytes is the largest file the previewer will read.
const MaxBytes = 2 << 20

// Kind classifies how a preview should be displayed.
type Kind string

const (
	KindMarkdown Kind = "markdown" // Content holds rendered HTML
	KindImage    Kind = "image"    // Content holds a data URI
	KindText     Kind = "text"     // Content holds raw text
	KindBinary   Kind = "binary"   // Content is empty; metadata only
)

// Preview is the displayable form of one file.
type Preview struct {
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Content string `json:"content,omitempty"`
}

var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render classifies path by extension and produces its preview. Files
// over MaxBytes, and files that cannot be classified, fall back to
// KindBinary with metadata only.
func Render(path string) (*Preview, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	p := &Preview{
		Kind: KindBinary,
		Name: filepath.Base(path),
		Size: info.Size(),
	}
	if info.Size() > MaxBytes {
		return p, nil
	}

	ext := strings.ToLower(filepath.Ext(path))

	if mime, ok := imageMIME[ext]; ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		p.Kind = KindImage
		p.Content = fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
		return p, nil
	}

	if ext == ".md" || ext == ".markdown" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var buf bytes.Buffer
		if err := markdown.Convert(data, &buf); err != nil {
			return nil, fmt.Errorf("render markdown %s: %w", path, err)
		}
		p.Kind = KindMarkdown
		p.Content = buf.String()
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		p.Kind = KindText
		p.Content = string(data)
	}
	return p, nil
}
