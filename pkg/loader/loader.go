// Package loader reads derivation trees from disk in the formats rewriters
// emit: nested JSON or YAML documents, or flat JSONL records that reference
// their parent by id.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/eva/pkg/model"
)

// Format identifies a tree document encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// ErrUnknownFormat is returned for files whose extension names no known format.
var ErrUnknownFormat = errors.New("unknown tree format")

// ErrEmpty is returned when a document holds no term.
var ErrEmpty = errors.New("document contains no tree")

// maxRecordSize bounds a single JSONL line; labels can carry large terms.
const maxRecordSize = 16 << 20

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// LoadFile reads and validates the tree stored at path.
func LoadFile(path string) (*model.Term, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	term, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return term, nil
}

// Decode reads one tree from r. The result is validated before it is
// returned.
func Decode(r io.Reader, format Format) (*model.Term, error) {
	var (
		term *model.Term
		err  error
	)
	switch format {
	case FormatJSON:
		term, err = decodeJSON(r)
	case FormatYAML:
		term, err = decodeYAML(r)
	case FormatJSONL:
		var records []model.FlatTerm
		records, err = ReadRecords(r)
		if err == nil {
			term, err = Assemble(records)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := term.Validate(); err != nil {
		return nil, err
	}
	return term, nil
}

func decodeJSON(r io.Reader) (*model.Term, error) {
	var term *model.Term
	if err := json.NewDecoder(r).Decode(&term); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if term == nil {
		return nil, ErrEmpty
	}
	return term, nil
}

func decodeYAML(r io.Reader) (*model.Term, error) {
	var term *model.Term
	if err := yaml.NewDecoder(r).Decode(&term); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if term == nil {
		return nil, ErrEmpty
	}
	return term, nil
}

// ReadRecords parses JSONL input into flat records. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]model.FlatTerm, error) {
	var records []model.FlatTerm
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec model.FlatTerm
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// WriteRecords writes t as JSONL, one record per node in pre-order.
func WriteRecords(w io.Writer, t *model.Term) error {
	enc := json.NewEncoder(w)
	for _, rec := range model.Flatten(t) {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
