package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streets.tsv")
	content := "# comment line\n" +
		"Main Street\t0\n" +
		"\n" +
		"Broad Way\t2\n" +
		"no bucket field\n" +
		"Bad Bucket\t-7\n" +
		"High Street\t1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := []Entry{
		{"Main Street", 0},
		{"Broad Way", 2},
		{"High Street", 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), entries)
	}
	for i, e := range want {
		if entries[i] != e {
			t.Errorf("entry %d: expected %+v, got %+v", i, e, entries[i])
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.tsv")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestEntriesAreSearchable(t *testing.T) {
	entries := []Entry{
		{"Italiano Pizza", 0},
		{"Sushi House", 1},
	}

	table, err := lookup.Build(Items(entries))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer table.Close()

	it := table.Find("House")
	if !it.Next() || it.Value().SearchableText() != "Sushi House" {
		t.Fatalf("expected Sushi House")
	}
	if it.Next() {
		t.Fatal("expected a single occurrence")
	}
}
