// Package cli handles cmd line input for testing and debugging lookups
// interactively.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/forgemo/ironstorm-lookup/internal/utils"
	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
)

// InputHandler reads patterns from stdin and prints the first matches with
// their bucket and timing. Flags control pattern length bounds and the
// number of results shown.
type InputHandler struct {
	table            *lookup.Table
	minPatternLength int
	maxPatternLength int
	matchLimit       int
}

// NewInputHandler handles initialization of the InputHandler.
func NewInputHandler(table *lookup.Table, minLength, maxLength, limit int) *InputHandler {
	return &InputHandler{
		table:            table,
		minPatternLength: minLength,
		maxPatternLength: maxLength,
		matchLimit:       limit,
	}
}

// Start begins the interface loop. It prompts, reads one line from stdin
// and hands the trimmed pattern to handleInput. The loop ends when stdin
// does.
func (h *InputHandler) Start() error {
	log.Print("ironstorm CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a pattern and press Enter to search (Ctrl+C to exit):")

	for {
		log.Print("> ")
		pattern, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		h.handleInput(pattern)
	}
}

// handleInput runs one search. It validates the pattern length, streams
// matches up to the limit and reports how many occurrences exist in total.
func (h *InputHandler) handleInput(pattern string) {
	if len(pattern) < h.minPatternLength {
		log.Errorf("Pattern too short: %s", pattern)
		return
	}
	if len(pattern) > h.maxPatternLength {
		log.Errorf("Pattern too long: %s", pattern)
		return
	}

	// Counting every occurrence of a short pattern can touch the whole
	// index, so the tally stops at countCap and reports a lower bound.
	const countCap = 10000

	start := time.Now()
	it := h.table.Find(pattern)

	shown := 0
	total := 0
	for total < countCap && it.Next() {
		total++
		if shown >= h.matchLimit {
			continue
		}
		shown++
		match := it.Value()
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", match.SearchableText())
		log.Printf("%2d. %-40s (bucket: %d)", shown, clText, match.Bucket())
	}
	elapsed := time.Since(start)

	if err := it.Err(); err != nil {
		log.Errorf("Search failed for pattern '%s': %v", pattern, err)
		return
	}
	if total == 0 {
		log.Warnf("No matches found for pattern: '%s'", pattern)
		return
	}
	count := utils.FormatWithCommas(total)
	if total == countCap {
		count += "+"
	}
	log.Printf("%s occurrences for pattern '%s' in %v (showing %d)",
		count, pattern, elapsed, shown)
}
