package enum

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/ir"
	"github.com/roach88/enums/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOpts(opts ...Option) []Option {
	return append([]Option{WithLogger(quietLogger()), WithIDGenerator(testutil.NewSequentialIDs())}, opts...)
}

// mustPairs builds an enumeration from alternating name, value arguments.
// A nil value declares an auto value.
func mustPairs(t *testing.T, name string, kind Kind, kv ...any) *Enumeration {
	t.Helper()
	require.Zero(t, len(kv)%2, "mustPairs needs name/value pairs")

	b := Begin(name, kind, testOpts()...)
	for i := 0; i < len(kv); i += 2 {
		raw := Auto()
		if kv[i+1] != nil {
			v, err := ir.FromGo(kv[i+1])
			require.NoError(t, err)
			raw = Value(v)
		}
		require.NoError(t, b.Declare(kv[i].(string), raw))
	}
	e, err := b.Finalize()
	require.NoError(t, err)
	return e
}

func mustValue(t *testing.T, e *Enumeration, v ir.Value) *Member {
	t.Helper()
	m, err := e.ByValue(v)
	require.NoError(t, err)
	return m
}

func mustName(t *testing.T, e *Enumeration, name string) *Member {
	t.Helper()
	m, err := e.ByName(name)
	require.NoError(t, err)
	return m
}

func names(members []*Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.label()
	}
	return out
}
