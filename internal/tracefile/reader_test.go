package tracefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

const swapTrace = `{"target":"x","kind":"assignment","value":"foo","file":"swap.py","line":1}
{"target":"y","kind":"assignment","value":"bar","file":"swap.py","line":2}
{"target":"x","kind":"assignment","value":"bar","sources":[{"name":"y","index":0}],"file":"swap.py","line":3}
{"target":"y","kind":"assignment","value":"foo","sources":[{"name":"x","index":0}],"file":"swap.py","line":3}
`

func TestReadSwapTrace(t *testing.T) {
	records, err := Read(strings.NewReader(swapTrace))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "x", records[0].Target)
	assert.Equal(t, RecordAssignment, records[0].Kind)
	assert.Equal(t, "foo", records[0].Value)
	assert.Equal(t, types.Location{File: "swap.py", Line: 1}, records[0].Location())

	assert.Equal(t, []types.SourceRef{{Name: "y", Index: 0}}, records[2].Sources)
	assert.Equal(t, []types.SourceRef{{Name: "x", Index: 0}}, records[3].Sources)
}

func TestReadSkipsBlankLines(t *testing.T) {
	input := "\n" + `{"target":"x","kind":"initial","value":1,"file":"p.py","line":1}` + "\n\n"
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, RecordInitial, records[0].Kind)
	assert.Equal(t, 1.0, records[0].Value)
}

func TestReadDeletionRecord(t *testing.T) {
	input := `{"target":"x","kind":"deletion","file":"p.py","line":9}`
	records, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, RecordDeletion, records[0].Kind)
	assert.Nil(t, records[0].Value)
}

func TestReadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "malformed json",
			input: `{"target": "x"`,
			want:  "trace line 1",
		},
		{
			name: "malformed json on later line",
			input: `{"target":"x","kind":"initial","file":"p.py","line":1}` + "\n" +
				`not json`,
			want: "trace line 2",
		},
		{
			name:  "missing target",
			input: `{"kind":"assignment","value":1,"file":"p.py","line":1}`,
			want:  "missing target",
		},
		{
			name:  "missing kind",
			input: `{"target":"x","file":"p.py","line":1}`,
			want:  "missing kind",
		},
		{
			name:  "unknown kind",
			input: `{"target":"x","kind":"rebind","file":"p.py","line":1}`,
			want:  "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(swapTrace), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}
