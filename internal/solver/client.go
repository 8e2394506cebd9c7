// Package solver is the client of the remote search service.
//
// The service owns the search algorithms. This package only ships a grid
// snapshot to it and decodes the two ordered cell sequences it returns:
//
//	POST <base>/solve/<algorithm>
//	{"startNode": 20, "endNode": 379, "walls": [...], "algorithm": "bfs"}
//
//	200 OK
//	{"visited": [...], "path": [...], "status": "Found"}
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazerun/internal/logging"
	"github.com/san-kum/mazerun/internal/maze"
)

// DefaultEndpoint is the base URL of a locally running solver service.
const DefaultEndpoint = "http://localhost:5000"

// maxBody caps the response read; a 400 cell grid answers in a few KiB.
const maxBody = 8 << 20

type Algorithm string

const (
	BFS   Algorithm = "bfs"
	DFS   Algorithm = "dfs"
	AStar Algorithm = "astar"
)

var algorithms = []Algorithm{BFS, DFS, AStar}

// Algorithms lists the algorithms the service serves, in display order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithms))
	copy(out, algorithms)
	return out
}

// ParseAlgorithm accepts the wire names, case-insensitively, plus "a*".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bfs":
		return BFS, nil
	case "dfs":
		return DFS, nil
	case "astar", "a*":
		return AStar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) Valid() bool {
	_, err := ParseAlgorithm(string(a))
	return err == nil
}

// Label is the human name shown in the UI.
func (a Algorithm) Label() string {
	switch a {
	case BFS:
		return "Breadth-First Search"
	case DFS:
		return "Depth-First Search"
	case AStar:
		return "A* Search"
	}
	return string(a)
}

// Request is the wire body of a solve call.
type Request struct {
	StartNode int       `json:"startNode"`
	EndNode   int       `json:"endNode"`
	Walls     []int     `json:"walls"`
	Algorithm Algorithm `json:"algorithm"`
}

// Result is the decoded service answer. Path is empty when the end cell is
// unreachable; that is a valid outcome, not an error.
type Result struct {
	Visited []int  `json:"visited"`
	Path    []int  `json:"path"`
	Status  string `json:"status,omitempty"`
}

// Found reports whether the service returned a route.
func (r *Result) Found() bool { return len(r.Path) > 0 }

// NewRequest snapshots g for the given algorithm.
func NewRequest(g *maze.Grid, alg Algorithm) Request {
	return Request{
		StartNode: g.Start(),
		EndNode:   g.End(),
		Walls:     g.Walls(),
		Algorithm: alg,
	}
}

// Client posts solve requests. It keeps no state between calls.
type Client struct {
	base      string
	endpoints map[Algorithm]string
	http      *http.Client
	log       *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEndpoint routes one algorithm to a full URL instead of <base>/solve/<alg>.
func WithEndpoint(alg Algorithm, url string) Option {
	return func(c *Client) { c.endpoints[alg] = url }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = logging.OrDiscard(l) }
}

func New(base string, opts ...Option) *Client {
	if base == "" {
		base = DefaultEndpoint
	}
	c := &Client{
		base:      strings.TrimRight(base, "/"),
		endpoints: make(map[Algorithm]string),
		http:      http.DefaultClient,
		log:       logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Endpoint returns the URL used for alg.
func (c *Client) Endpoint(alg Algorithm) string {
	if u, ok := c.endpoints[alg]; ok {
		return u
	}
	return c.base + "/solve/" + string(alg)
}

// Solve sends one request and blocks until the answer or a failure. Any
// failure after the algorithm check is returned as a *SolveError.
func (c *Client) Solve(ctx context.Context, g *maze.Grid, alg Algorithm) (*Result, error) {
	alg, err := ParseAlgorithm(string(alg))
	if err != nil {
		return nil, err
	}

	url := c.Endpoint(alg)
	fail := func(code int, err error) error {
		return &SolveError{Algorithm: alg, Endpoint: url, StatusCode: code, Err: err}
	}

	body, err := json.Marshal(NewRequest(g, alg))
	if err != nil {
		return nil, fail(0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fail(0, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug("solve request", "algorithm", alg, "url", url, "walls", g.WallCount(), "bytes", len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(0, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrTransport, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrStatus, snippet(data)))
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	if err := res.check(g); err != nil {
		return nil, fail(resp.StatusCode, err)
	}

	c.log.Debug("solve response", "algorithm", alg, "visited", len(res.Visited), "path", len(res.Path), "status", res.Status)
	return &res, nil
}

// check normalizes nil sequences and rejects cells outside the grid.
func (r *Result) check(g *maze.Grid) error {
	if r.Visited == nil {
		r.Visited = []int{}
	}
	if r.Path == nil {
		r.Path = []int{}
	}
	for _, seq := range [][]int{r.Visited, r.Path} {
		for _, cell := range seq {
			if !g.Contains(cell) {
				return fmt.Errorf("%w: cell %d: %v", ErrDecode, cell, maze.ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// Distinct counts the distinct cells of the visited sequence.
func (r *Result) Distinct() int {
	seen := make([]int, len(r.Visited))
	copy(seen, r.Visited)
	sort.Ints(seen)
	n := 0
	for i, v := range seen {
		if i == 0 || v != seen[i-1] {
			n++
		}
	}
	return n
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	if s == "" {
		return "empty body"
	}
	return s
}
