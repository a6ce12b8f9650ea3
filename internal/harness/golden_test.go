package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/enums/internal/ir"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"color_aliases", "perm_flag", "int_flag_synthesis"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)

			require.NoError(t, AssertGolden(t, scenario.Name, result))
		})
	}
}

func TestMarshalTrace_Canonical(t *testing.T) {
	uncovered := int64(2)
	has := true
	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, Op: OpDecompose, Enum: "Mode", Input: ir.Array{ir.Int(7)}, Members: []string{"B", "A"}, Uncovered: &uncovered})
	result.AddTrace(TraceEvent{Seq: 2, Op: OpHas, Enum: "Mode", Input: ir.Array{ir.String("B"), ir.String("A")}, Result: &has})

	data, err := MarshalTrace("bits", result)
	require.NoError(t, err)

	expected := `{"scenario_name":"bits","trace":[` +
		`{"enum":"Mode","input":[7],"members":["B","A"],"op":"decompose","seq":1,"uncovered":2},` +
		`{"enum":"Mode","input":["B","A"],"op":"has","result":true,"seq":2}]}`
	assert.Equal(t, expected, string(data))
}

func TestMarshalTrace_EmptyTrace(t *testing.T) {
	data, err := MarshalTrace("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"empty","trace":[]}`, string(data))
}

func TestRunWithGolden_PermFlag(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/perm_flag.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, scenario))
}
