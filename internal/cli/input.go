package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	mapio "github.com/matzehuels/wardley/pkg/io"
)

// stdin is read when a path is "-". Tests replace it.
var stdin io.Reader = os.Stdin

// source is the input of a command: notation text and overlay text, read
// either from a document file or from a notation file plus --meta.
type source struct {
	path     string
	metaPath string
	text     string
	overlay  string
	doc      *mapio.Document
}

// readSource reads path and its overlay. A file whose content starts with
// "{" is a document carrying both texts. A notation file's overlay defaults
// to <map>.meta.json next to it. An explicit metaPath always wins.
func readSource(path, metaPath string) (*source, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	src := &source{path: path, metaPath: metaPath}
	if isDocument(data) {
		doc, err := mapio.ReadDocument(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", path, err)
		}
		src.doc = &doc
		src.text, src.overlay = doc.Text, doc.Meta
	} else {
		src.text = string(data)
	}
	if metaPath == "" && src.doc == nil && path != "-" {
		src.metaPath = defaultMetaPath(path)
	}
	if src.metaPath != "" {
		overlay, err := readOverlay(src.metaPath)
		if err != nil {
			return nil, err
		}
		src.overlay = overlay
	}
	return src, nil
}

// saveOverlay writes overlay back where it came from: the --meta file if one
// was given, otherwise the document.
func (s *source) saveOverlay(overlay string) (string, error) {
	s.overlay = overlay
	if s.metaPath != "" || s.doc == nil {
		path := s.metaPath
		if path == "" {
			path = "-"
		}
		return path, writeOutput(path, []byte(overlay))
	}
	s.doc.Meta = overlay
	if s.doc.ID == "" {
		s.doc.ID = uuid.NewString()
	}
	return s.path, mapio.ExportDocument(*s.doc, s.path)
}

// readOverlay reads an overlay file. A missing file is an empty overlay.
func readOverlay(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read overlay %s: %w", path, err)
	}
	return string(data), nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isDocument(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

// outputPath derives an output file next to input: map.owm -> map<suffix>.
func outputPath(input, suffix string) string {
	if input == "-" {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

func defaultMetaPath(input string) string {
	return outputPath(input, ".meta.json")
}
