package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteJSONLinesAtomicTypedRows(t *testing.T) {
	type row struct {
		Term  string  `json:"term"`
		Score float64 `json:"score"`
	}
	path := filepath.Join(t.TempDir(), "artifacts", "concepts.jsonl")

	rows := []row{{Term: "mitochondria", Score: 0.9}, {Term: "glucose", Score: 0.4}}
	require.NoError(t, WriteJSONLinesAtomic(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"term":"mitochondria"`)
	require.Contains(t, lines[1], `"score":0.4`)
}

func TestChecksumStable(t *testing.T) {
	a, err := Checksum(strings.NewReader("studyforge"))
	require.NoError(t, err)
	b, err := Checksum(strings.NewReader("studyforge"))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestSafeJoinDropsDirectoryComponents(t *testing.T) {
	require.Equal(t, filepath.Join("/uploads", "notes.pdf"), SafeJoin("/uploads", "../../etc/notes.pdf"))
}
