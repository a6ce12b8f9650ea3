package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/enums/internal/enum"
	"github.com/roach88/enums/internal/ir"
	"github.com/roach88/enums/internal/testutil"
)

// createTestStore creates a new file-backed store in a temp dir with
// deterministic snapshot ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// enumOpts returns options for enumerations built in store tests.
func enumOpts() []enum.Option {
	return []enum.Option{
		enum.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		enum.WithIDGenerator(testutil.NewSequentialIDs()),
	}
}

// permDefinition is an int flag with two declared bits.
func permDefinition() ir.Definition {
	return ir.Definition{
		Name: "Perm",
		Kind: ir.KindIntFlag,
		Members: []ir.Declaration{
			{Name: "R", Value: ir.Int(4)},
			{Name: "W", Value: ir.Int(2)},
		},
	}
}

// colorDefinition is a plain enumeration with an alias.
func colorDefinition() ir.Definition {
	return ir.Definition{
		Name: "Color",
		Kind: ir.KindEnum,
		Members: []ir.Declaration{
			{Name: "RED", Value: ir.Int(1)},
			{Name: "GREEN", Auto: true},
			{Name: "CRIMSON", Value: ir.Int(1)},
		},
	}
}
