// Package dataset loads tab-separated candidate files into searchable
// entries for the ironstorm binary.
//
// Each line is `text<TAB>bucket`. Blank lines and lines starting with '#'
// are skipped; malformed lines are logged and dropped rather than failing
// the whole load.
package dataset

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
)

// Entry is one candidate loaded from a dataset file.
type Entry struct {
	Text  string
	Class lookup.Bucket
}

// SearchableText returns the indexed text.
func (e Entry) SearchableText() string { return e.Text }

// Bucket returns the coarse priority class.
func (e Entry) Bucket() lookup.Bucket { return e.Class }

// LoadFile reads all entries from a dataset file.
func LoadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	dropped := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		text, bucketField, found := strings.Cut(line, "\t")
		if !found {
			log.Warnf("dataset %s:%d: missing bucket field, line dropped", path, lineNo)
			dropped++
			continue
		}
		bucket, err := strconv.ParseUint(strings.TrimSpace(bucketField), 10, 32)
		if err != nil {
			log.Warnf("dataset %s:%d: bad bucket %q, line dropped", path, lineNo, bucketField)
			dropped++
			continue
		}
		entries = append(entries, Entry{Text: text, Class: lookup.Bucket(bucket)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	if dropped > 0 {
		log.Warnf("dataset %s: dropped %d malformed lines", path, dropped)
	}
	log.Debugf("dataset %s: loaded %d entries", path, len(entries))
	return entries, nil
}

// Items adapts loaded entries to the sequence Build consumes.
func Items(entries []Entry) iter.Seq[lookup.Searchable] {
	return func(yield func(lookup.Searchable) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}
