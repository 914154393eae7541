// Package phrasebook holds the phrase-answer table used for exact-match
// canned replies. A Table is built once at startup and never mutated.
package phrasebook

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrasesYAML []byte

// Entry is one question/answer pair.
type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type document struct {
	Phrases []Entry `yaml:"phrases"`
}

// Table maps normalized phrases to answers. The zero value is an empty table.
// Safe for concurrent readers.
type Table struct {
	answers map[string]string
}

var (
	defaultEntries     []Entry
	defaultEntriesOnce sync.Once
	defaultEntriesErr  error
)

// Normalize lowercases s and trims surrounding whitespace. Table keys and
// user messages are both compared in this form.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Defaults returns the entries shipped in the embedded phrases.yaml.
func Defaults() ([]Entry, error) {
	defaultEntriesOnce.Do(func() {
		defaultEntries, defaultEntriesErr = Parse(defaultPhrasesYAML)
		if defaultEntriesErr != nil {
			defaultEntriesErr = fmt.Errorf("phrasebook: embedded phrases.yaml: %w", defaultEntriesErr)
		}
	})
	return defaultEntries, defaultEntriesErr
}

// Parse decodes a phrases YAML document.
func Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("phrasebook: decode yaml: %w", err)
	}
	return doc.Phrases, nil
}

// Build validates each layer and merges them into a Table. Later layers
// override earlier ones for the same normalized question; a duplicate inside
// a single layer is an error.
func Build(layers ...[]Entry) (Table, error) {
	answers := make(map[string]string)
	var result *multierror.Error

	for li, layer := range layers {
		seen := make(map[string]struct{}, len(layer))
		for i, e := range layer {
			key := Normalize(e.Question)
			switch {
			case key == "":
				result = multierror.Append(result, fmt.Errorf("layer %d entry %d: question is empty", li, i))
				continue
			case strings.TrimSpace(e.Answer) == "":
				result = multierror.Append(result, fmt.Errorf("layer %d entry %d (%q): answer is empty", li, i, key))
				continue
			}
			if _, dup := seen[key]; dup {
				result = multierror.Append(result, fmt.Errorf("layer %d entry %d: duplicate question %q", li, i, key))
				continue
			}
			seen[key] = struct{}{}
			answers[key] = e.Answer
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return Table{}, fmt.Errorf("phrasebook: invalid entries: %w", err)
	}
	return Table{answers: answers}, nil
}

// Default builds a Table from the embedded entries only.
func Default() (Table, error) {
	entries, err := Defaults()
	if err != nil {
		return Table{}, err
	}
	return Build(entries)
}

// Lookup returns the answer for an already-normalized phrase.
func (t Table) Lookup(normalized string) (string, bool) {
	answer, ok := t.answers[normalized]
	return answer, ok
}

func (t Table) Len() int {
	return len(t.answers)
}

// Entries returns the table contents sorted by question.
func (t Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.answers))
	for q, a := range t.answers {
		out = append(out, Entry{Question: q, Answer: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question < out[j].Question })
	return out
}
