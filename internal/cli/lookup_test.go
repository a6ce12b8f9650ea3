package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/enum"
)

func TestLookupByName(t *testing.T) {
	out, _, err := execute(t, "lookup", defsDir(t), "Color", "RED")
	require.NoError(t, err)
	assert.Equal(t, "Color.RED = 1\n  title: Red\n", out)
}

func TestLookupAliasResolvesToCanonical(t *testing.T) {
	out, _, err := execute(t, "lookup", defsDir(t), "Color", "CRIMSON", "--by", "name")
	require.NoError(t, err)
	assert.Contains(t, out, "Color.RED = 1")
}

func TestLookupAutoFallsBackToValue(t *testing.T) {
	out, _, err := execute(t, "lookup", defsDir(t), "Color", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Color.GREEN = 2")
}

func TestLookupFold(t *testing.T) {
	dir := defsDir(t)

	out, _, err := execute(t, "lookup", dir, "Color", "green", "--by", "fold")
	require.NoError(t, err)
	assert.Contains(t, out, "Color.GREEN")

	_, _, err = execute(t, "lookup", dir, "Color", "green", "--by", "name")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLookupByValueIgnoresNames(t *testing.T) {
	dir := writeFiles(t, map[string]string{"codes.enum.yaml": `enums:
  Code:
    kind: enum
    members:
      OK: "OK"
      ok: "fine"
`})

	out, _, err := execute(t, "lookup", dir, "Code", "fine", "--by", "value")
	require.NoError(t, err)
	assert.Contains(t, out, "Code.ok = \"fine\"")

	out, _, err = execute(t, "lookup", dir, "Code", "ok", "--by", "value")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [MEMBER_NOT_FOUND]")

	_, _, err = execute(t, "lookup", defsDir(t), "Color", "RED", "--by", "value")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestLookupFlagSynthesis(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "lookup", defsDir(t), "Perm", "6", "--by", "value")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Enum   string `json:"enum"`
			Member string `json:"member"`
			Name   string `json:"name"`
			Value  int64  `json:"value"`
			Named  bool   `json:"named"`
			Title  string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Perm", resp.Data.Enum)
	assert.Equal(t, "Perm.R|W", resp.Data.Member)
	assert.Empty(t, resp.Data.Name)
	assert.Equal(t, int64(6), resp.Data.Value)
	assert.False(t, resp.Data.Named)
	assert.Equal(t, "R, W", resp.Data.Title)
}

func TestLookupSynthesizedText(t *testing.T) {
	out, _, err := execute(t, "lookup", defsDir(t), "Perm", "3")
	require.NoError(t, err)
	assert.Equal(t, "Perm.W|X = 3\n  title: W, X (synthesized)\n", out)
}

func TestLookupStrictFlagRejectsUnknownBits(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "lookup", defsDir(t), "Perm", "8")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(enum.ErrCodeMemberNotFound), resp.Error.Code)
	assert.Contains(t, resp.Error.Message, string(enum.ErrCodeInvalidFlagValue))
}

func TestLookupIntFlagKeepsUnknownBits(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "lookup", defsDir(t), "Level", "8", "--by", "value")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Member string `json:"member"`
			Value  int64  `json:"value"`
			Named  bool   `json:"named"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(8), resp.Data.Value)
	assert.False(t, resp.Data.Named)
}

func TestLookupMissingValue(t *testing.T) {
	out, _, err := execute(t, "lookup", defsDir(t), "Color", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [MEMBER_NOT_FOUND]")
}

func TestLookupUnknownEnumeration(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "lookup", defsDir(t), "Size", "S")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, []any{"Perm", "Color", "Level"}, resp.Error.Details)
}

func TestLookupInvalidMode(t *testing.T) {
	_, _, err := execute(t, "lookup", defsDir(t), "Color", "RED", "--by", "guess")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid lookup mode")
}

func TestDecomposeFlagValue(t *testing.T) {
	out, _, err := execute(t, "decompose", defsDir(t), "Perm", "7")
	require.NoError(t, err)
	assert.Equal(t, "Perm(7)\n  Perm.R = 4\n  Perm.W = 2\n  Perm.X = 1\n", out)
}

func TestDecomposeReportsUncoveredBits(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "decompose", defsDir(t), "Perm", "0x9")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Value     int64 `json:"value"`
			Uncovered int64 `json:"uncovered"`
			Members   []struct {
				Member string `json:"member"`
			} `json:"members"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(9), resp.Data.Value)
	assert.Equal(t, int64(8), resp.Data.Uncovered)
	require.Len(t, resp.Data.Members, 1)
	assert.Equal(t, "Perm.X", resp.Data.Members[0].Member)
}

func TestDecomposeRejectsNonFlag(t *testing.T) {
	out, _, err := execute(t, "decompose", defsDir(t), "Color", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "not a flag enumeration")
}

func TestDecomposeRejectsNonInteger(t *testing.T) {
	_, _, err := execute(t, "decompose", defsDir(t), "Perm", "rw")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
