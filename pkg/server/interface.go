/*
Package server implements msgpack IPC for substring lookup services.

The server speaks binary msgpack over stdin/stdout on a request/response
model. Each message carries an ID that is echoed back, so clients can
pipeline requests. Messages are processed synchronously with timing info
included in responses.

A query request looks like:

	{"id": "req_001", "q": "hero", "l": 10}

and is answered with the first matches in bucket order:

	{"id": "req_001", "m": [{"t": "Superhero Movie", "b": 0}], "c": 1, "t": 145}

The "t" field in the response is the lookup time in microseconds. When
more occurrences exist than the limit allowed, "x" is set so clients know
the stream was cut off.

Status requests report table and cache counters:

	{"id": "s_001", "action": "stats"}
	{"id": "s_002", "action": "ping"}

Failures come back as an error reply with a code:

	{"id": "req_001", "e": "pattern exceeds maximum length", "c": 400}

Repeated patterns are served from a bounded LRU result cache; the table
itself is immutable, so cached entries never go stale.
*/
package server

// Request is the envelope for every incoming message. Messages with an
// action are status requests; everything else is a query. The pattern is
// a pointer so an explicitly empty pattern can be told apart from an
// absent one.
type Request struct {
	ID      string  `msgpack:"id"`
	Pattern *string `msgpack:"q,omitempty"`
	Limit   int     `msgpack:"l,omitempty"`
	Action  string  `msgpack:"action,omitempty"`
}

// Match is one occurrence in a query response.
type Match struct {
	Text   string `msgpack:"t"`
	Bucket uint32 `msgpack:"b"`
}

// QueryResponse answers a query request.
type QueryResponse struct {
	ID        string  `msgpack:"id"`
	Matches   []Match `msgpack:"m"`
	Count     int     `msgpack:"c"`
	Truncated bool    `msgpack:"x,omitempty"`
	TimeTaken int64   `msgpack:"t"`
}

// StatusResponse answers ping and stats requests.
type StatusResponse struct {
	ID      string         `msgpack:"id"`
	Status  string         `msgpack:"status"`
	Items   int            `msgpack:"items,omitempty"`
	Buckets int            `msgpack:"buckets,omitempty"`
	Mode    string         `msgpack:"mode,omitempty"`
	Cache   map[string]int `msgpack:"cache,omitempty"`
}

// ErrorReply holds basic error information for failed requests.
type ErrorReply struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
