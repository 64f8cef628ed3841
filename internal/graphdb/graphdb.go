// Package graphdb wraps the graph database collaborator behind small
// interfaces so the rest of the tool never touches driver types.
package graphdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Connection failures, classified so callers can log actionable
// guidance without inspecting driver error types.
var (
	// ErrUnavailable means the database could not be reached at all.
	ErrUnavailable = errors.New("graph database unavailable")
	// ErrAuth means the database rejected the supplied credentials.
	ErrAuth = errors.New("graph database authentication failed")
)

// Result holds one query run's output: the ordered column names and
// rows of positional values aligned to them.
type Result struct {
	Keys []string
	Rows [][]any
}

// Session executes validation queries against the live graph.
type Session interface {
	Run(ctx context.Context, query string) (Result, error)
	Close(ctx context.Context) error
}

// Driver opens sessions scoped to one command invocation.
type Driver interface {
	Session(ctx context.Context) Session
	Close(ctx context.Context) error
}

// Connect opens a neo4j driver and verifies connectivity up front.
// Failures are classified as ErrUnavailable or ErrAuth.
func Connect(ctx context.Context, uri, user, password string) (Driver, error) {
	auth := neo4j.NoAuth()
	if user != "" || password != "" {
		auth = neo4j.BasicAuth(user, password, "")
	}
	d, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("invalid neo4j URI %q: %w", uri, err)
	}
	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		if isAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return nil, fmt.Errorf("%w at %q: %v", ErrUnavailable, uri, err)
	}
	return &neoDriver{driver: d}, nil
}

// IsQueryError reports whether err came from the query itself (syntax
// or other client-side statement problems) rather than from the
// connection. Query errors are recoverable per directory; connection
// errors abort the run.
func IsQueryError(err error) bool {
	var ne *neo4j.Neo4jError
	if !errors.As(err, &ne) {
		return false
	}
	return strings.HasPrefix(ne.Code, "Neo.ClientError.Statement")
}

func isAuthError(err error) bool {
	var ne *neo4j.Neo4jError
	if !errors.As(err, &ne) {
		return false
	}
	return strings.HasPrefix(ne.Code, "Neo.ClientError.Security")
}

type neoDriver struct {
	driver neo4j.DriverWithContext
}

func (d *neoDriver) Session(ctx context.Context) Session {
	return &neoSession{
		session: d.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead}),
	}
}

func (d *neoDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

type neoSession struct {
	session neo4j.SessionWithContext
}

func (s *neoSession) Run(ctx context.Context, query string) (Result, error) {
	res, err := s.session.Run(ctx, query, nil)
	if err != nil {
		return Result{}, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return Result{}, err
	}
	out := Result{}
	if keys, err := res.Keys(); err == nil {
		out.Keys = keys
	}
	out.Rows = make([][]any, 0, len(records))
	for _, record := range records {
		out.Rows = append(out.Rows, record.Values)
	}
	return out, nil
}

func (s *neoSession) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}
