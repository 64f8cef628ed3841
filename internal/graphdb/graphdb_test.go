package graphdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func TestIsQueryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "cypher syntax error",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input"},
			want: true,
		},
		{
			name: "wrapped statement error",
			err:  fmt.Errorf("running query: %w", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.TypeError"}),
			want: true,
		},
		{
			name: "security error is not a query error",
			err:  &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQueryError(tt.err); got != tt.want {
				t.Errorf("IsQueryError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !isAuthError(&neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized"}) {
		t.Error("unauthorized code not classified as auth error")
	}
	if isAuthError(errors.New("no route to host")) {
		t.Error("plain error classified as auth error")
	}
}
