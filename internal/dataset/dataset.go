// Package dataset loads labeled evaluation cases from CSV.
package dataset

import (
	"bytes"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/*.csv
var defaultData embed.FS

// ErrDuplicateCase is returned when a case_id appears more than once.
var ErrDuplicateCase = errors.New("duplicate case_id")

// Kind identifies which evaluation a dataset feeds.
type Kind string

const (
	KindRouting Kind = "routing"
	KindTool    Kind = "tool"
)

// ParseKind accepts the CLI and HTTP spellings of an evaluation kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "routing", "handoff":
		return KindRouting, nil
	case "tool", "tool_call", "tool-call":
		return KindTool, nil
	default:
		return "", fmt.Errorf("unknown eval kind %q", value)
	}
}

// LabelColumn is the CSV column holding the expected label.
func (k Kind) LabelColumn() string {
	if k == KindTool {
		return "expected_tool"
	}
	return "expected_agent"
}

// DefaultFileName is the embedded dataset file name for the kind.
func (k Kind) DefaultFileName() string {
	if k == KindTool {
		return "tool_call_dataset.csv"
	}
	return "routing_dataset.csv"
}

// Case is one labeled prompt.
type Case struct {
	ID       string `json:"case_id"`
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
}

// Dataset is a named, ordered list of cases.
type Dataset struct {
	Name  string
	Kind  Kind
	Cases []Case
}

// Load reads a dataset from path. An empty path selects the embedded default.
func Load(path string, kind Kind) (Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return Default(kind)
	}
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	cases, err := Parse(file, kind)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %s: %w", path, err)
	}
	return Dataset{Name: path, Kind: kind, Cases: cases}, nil
}

// Default returns the embedded dataset for kind.
func Default(kind Kind) (Dataset, error) {
	data, err := DefaultBytes(kind)
	if err != nil {
		return Dataset{}, err
	}
	cases, err := Parse(bytes.NewReader(data), kind)
	if err != nil {
		return Dataset{}, fmt.Errorf("embedded dataset %s: %w", kind.DefaultFileName(), err)
	}
	return Dataset{Name: kind.DefaultFileName(), Kind: kind, Cases: cases}, nil
}

// DefaultBytes returns the raw embedded CSV for kind.
func DefaultBytes(kind Kind) ([]byte, error) {
	return defaultData.ReadFile("data/" + kind.DefaultFileName())
}

// Parse reads case_id, prompt, and the kind's label column from a CSV with a header row.
func Parse(r io.Reader, kind Kind) ([]Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	required := []string{"case_id", "prompt", kind.LabelColumn()}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	cases := []Case{}
	seen := map[string]int{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		field := func(name string) string {
			index := columns[name]
			if index >= len(record) {
				return ""
			}
			return record[index]
		}
		c := Case{ID: strings.TrimSpace(field("case_id")), Prompt: field("prompt"), Expected: strings.TrimSpace(field(kind.LabelColumn()))}
		if c.ID == "" {
			return nil, fmt.Errorf("line %d: case_id is required", line)
		}
		if first, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("line %d: %w %q (first seen on line %d)", line, ErrDuplicateCase, c.ID, first)
		}
		seen[c.ID] = line
		cases = append(cases, c)
	}
	return cases, nil
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
