package server

import (
	"bytes"
	"iter"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/forgemo/ironstorm-lookup/pkg/config"
	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
)

type candidate struct {
	text   string
	bucket lookup.Bucket
}

func (c candidate) SearchableText() string { return c.text }
func (c candidate) Bucket() lookup.Bucket  { return c.bucket }

func testTable(t *testing.T) *lookup.Table {
	t.Helper()
	items := []lookup.Searchable{
		candidate{"India Man", 5},
		candidate{"Ami Guy", 5},
		candidate{"Italiano Pizza", 0},
		candidate{"Sushi House", 1},
		candidate{"Brezel Hut", 0},
	}
	seq := func(yield func(lookup.Searchable) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
	table, err := lookup.Build(iter.Seq[lookup.Searchable](seq))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { table.Close() })
	return table
}

// runSession encodes the requests, runs the server until EOF and returns
// a decoder over everything it wrote.
func runSession(t *testing.T, requests ...Request) *msgpack.Decoder {
	t.Helper()

	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	srv := NewServerWithIO(testTable(t), config.DefaultConfig(), &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return msgpack.NewDecoder(&out)
}

func expectReady(t *testing.T, dec *msgpack.Decoder) {
	t.Helper()
	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatalf("decoding ready message: %v", err)
	}
	if ready.Status != "ready" {
		t.Fatalf("expected ready status, got %+v", ready)
	}
}

func pattern(s string) *string { return &s }

func TestQueryRequest(t *testing.T) {
	dec := runSession(t, Request{ID: "q1", Pattern: pattern("i"), Limit: 10})
	expectReady(t, dec)

	var resp QueryResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID != "q1" {
		t.Errorf("wrong id echoed: %q", resp.ID)
	}
	if resp.Count != 5 || len(resp.Matches) != 5 {
		t.Fatalf("expected 5 matches, got %+v", resp)
	}
	if resp.Truncated {
		t.Error("stream was fully drained, truncated must be false")
	}
	if resp.Matches[0].Text != "Italiano Pizza" || resp.Matches[0].Bucket != 0 {
		t.Errorf("bucket order broken: %+v", resp.Matches[0])
	}
	if resp.Matches[2].Text != "Sushi House" {
		t.Errorf("expected Sushi House third, got %+v", resp.Matches[2])
	}
}

func TestQueryLimitTruncates(t *testing.T) {
	dec := runSession(t, Request{ID: "q1", Pattern: pattern("i"), Limit: 2})
	expectReady(t, dec)

	var resp QueryResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 || !resp.Truncated {
		t.Errorf("expected 2 truncated matches, got %+v", resp)
	}
}

func TestQueryValidation(t *testing.T) {
	long := string(make([]byte, 61))
	dec := runSession(t,
		Request{ID: "empty", Pattern: pattern("")},
		Request{ID: "long", Pattern: pattern(long)},
		Request{ID: "none"},
	)
	expectReady(t, dec)

	for _, wantID := range []string{"empty", "long", "none"} {
		var reply ErrorReply
		if err := dec.Decode(&reply); err != nil {
			t.Fatalf("decoding error reply for %s: %v", wantID, err)
		}
		if reply.ID != wantID || reply.Code != 400 {
			t.Errorf("expected 400 for %s, got %+v", wantID, reply)
		}
	}
}

func TestPingAndStats(t *testing.T) {
	dec := runSession(t,
		Request{ID: "p1", Action: "ping"},
		Request{ID: "q1", Pattern: pattern("i"), Limit: 10},
		Request{ID: "q2", Pattern: pattern("i"), Limit: 10},
		Request{ID: "s1", Action: "stats"},
	)
	expectReady(t, dec)

	var pong StatusResponse
	if err := dec.Decode(&pong); err != nil {
		t.Fatalf("decoding pong: %v", err)
	}
	if pong.ID != "p1" || pong.Status != "ok" {
		t.Errorf("unexpected pong: %+v", pong)
	}

	var first, second QueryResponse
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decoding first query: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decoding second query: %v", err)
	}
	if first.Count != second.Count {
		t.Errorf("cache changed the result: %d vs %d", first.Count, second.Count)
	}

	var stats StatusResponse
	if err := dec.Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.Items != 5 || stats.Buckets != 3 {
		t.Errorf("unexpected table stats: %+v", stats)
	}
	if stats.Mode != "resident" {
		t.Errorf("unexpected mode: %q", stats.Mode)
	}
	// The second identical query must have been a cache hit.
	if stats.Cache["cacheHits"] < 1 {
		t.Errorf("expected at least one cache hit: %v", stats.Cache)
	}
}

func TestUnknownAction(t *testing.T) {
	dec := runSession(t, Request{ID: "a1", Action: "restart"})
	expectReady(t, dec)

	var reply ErrorReply
	if err := dec.Decode(&reply); err != nil {
		t.Fatalf("decoding error reply: %v", err)
	}
	if reply.ID != "a1" || reply.Code != 400 {
		t.Errorf("expected 400 for unknown action, got %+v", reply)
	}
}
