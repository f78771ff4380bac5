package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/forgemo/ironstorm-lookup/internal/logger"
	"github.com/forgemo/ironstorm-lookup/pkg/config"
	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
)

// Server answers lookup queries over a msgpack stream.
type Server struct {
	table *lookup.Table
	cfg   *config.Config
	cache *lookup.QueryCache
	dec   *msgpack.Decoder
	enc   *msgpack.Encoder
	log   *log.Logger
}

// NewServer creates a lookup server using stdin/stdout for IPC.
func NewServer(table *lookup.Table, cfg *config.Config) *Server {
	return NewServerWithIO(table, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on explicit streams, mainly for tests.
func NewServerWithIO(table *lookup.Table, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		table: table,
		cfg:   cfg,
		cache: lookup.NewQueryCache(cfg.Server.CacheSize),
		dec:   msgpack.NewDecoder(r),
		enc:   msgpack.NewEncoder(w),
		log:   logger.Default("ipc"),
	}
}

// Start signals readiness and processes requests until the input stream
// ends. Decode failures end the session; request-level problems only fail
// the request.
func (s *Server) Start() error {
	s.log.Debug("Starting lookup server.")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	switch {
	case req.Action != "":
		s.handleAction(req)
	case req.Pattern != nil:
		s.handleQuery(req)
	default:
		s.sendError(req.ID, "request carries neither a pattern nor an action", 400)
	}
}

func (s *Server) handleAction(req Request) {
	switch req.Action {
	case "ping":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case "stats":
		s.send(StatusResponse{
			ID:      req.ID,
			Status:  "ok",
			Items:   s.table.Len(),
			Buckets: s.table.BucketCount(),
			Mode:    s.table.Mode().String(),
			Cache:   s.cache.Stats(),
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// handleQuery validates the pattern, serves from the result cache when it
// can and otherwise streams the first matches off a fresh Find call.
func (s *Server) handleQuery(req Request) {
	pattern := *req.Pattern

	if len(pattern) < s.cfg.Server.MinPattern {
		s.sendError(req.ID, fmt.Sprintf("pattern shorter than %d bytes", s.cfg.Server.MinPattern), 400)
		s.log.Debug("Pattern too short in request", "id", req.ID)
		return
	}
	if len(pattern) > s.cfg.Server.MaxPattern {
		s.sendError(req.ID, fmt.Sprintf("pattern exceeds maximum length of %d bytes", s.cfg.Server.MaxPattern), 400)
		s.log.Debug("Pattern too long in request", "id", req.ID)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	matches, truncated, err := s.collect(pattern, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.sendError(req.ID, err.Error(), 500)
		s.log.Errorf("Query %q failed: %v", pattern, err)
		return
	}

	s.send(QueryResponse{
		ID:        req.ID,
		Matches:   matches,
		Count:     len(matches),
		Truncated: truncated,
		TimeTaken: elapsed.Microseconds(),
	})
}

// collect returns up to limit matches for pattern, preferring the cache.
func (s *Server) collect(pattern string, limit int) ([]Match, bool, error) {
	if cached, complete, ok := s.cache.Get(pattern, limit); ok {
		s.log.Debugf("cache hit for %q", pattern)
		return toMatches(cached), !complete, nil
	}

	var found []lookup.CachedMatch
	it := s.table.Find(pattern)
	truncated := false
	for it.Next() {
		if len(found) >= limit {
			truncated = true
			break
		}
		m := it.Value()
		found = append(found, lookup.CachedMatch{
			Text:   m.SearchableText(),
			Bucket: m.Bucket(),
		})
	}
	if err := it.Err(); err != nil {
		return nil, false, err
	}

	s.cache.Put(pattern, found, !truncated)
	return toMatches(found), truncated, nil
}

func toMatches(cached []lookup.CachedMatch) []Match {
	matches := make([]Match, len(cached))
	for i, c := range cached {
		matches[i] = Match{Text: c.Text, Bucket: uint32(c.Bucket)}
	}
	return matches
}

func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorReply{ID: id, Error: message, Code: code})
}
