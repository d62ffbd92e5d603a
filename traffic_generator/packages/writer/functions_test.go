package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTrace(t *testing.T, w *Writer, registers []*WriterRegister) {
	t.Helper()

	for _, register := range registers {
		require.NoError(t, w.Write(register))
	}
}

func TestWriterFormat(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "trace.txt")

	w, err := New(filename)
	require.NoError(t, err)

	writeTrace(t, w, []*WriterRegister{
		{Source: 0, Destination: 5, Port: DEFAULT_PORT, Size: 1460, StartTime: 2.000012345},
		{Source: 7, Destination: 1, Port: DEFAULT_PORT, Size: 1, StartTime: 2.5},
	})

	// nothing is published before Close
	_, err = os.Stat(filename)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	assert.Equal(t, "2\n0 5 3 100 1460 2.000012345\n7 1 3 100 1 2.500000000\n", string(data))
}

func TestWriterEmptyTrace(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "empty.txt")

	w, err := New(filename)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(data))
}

func TestWriterLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "trace.txt")

	w, err := New(filename)
	require.NoError(t, err)
	writeTrace(t, w, []*WriterRegister{{Source: 1, Destination: 2, Port: 100, Size: 10, StartTime: 1}})
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "trace.txt", entries[0].Name())
}

func TestWriterAbortPublishesNothing(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "trace.txt")
	require.NoError(t, os.WriteFile(filename, []byte("previous\n"), 0644))

	w, err := New(filename)
	require.NoError(t, err)
	writeTrace(t, w, []*WriterRegister{{Source: 1, Destination: 2, Port: 100, Size: 10, StartTime: 1}})
	require.NoError(t, w.Abort())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, w.Write(&WriterRegister{}))
	assert.NoError(t, w.Close())
}

func TestWriterStdout(t *testing.T) {
	w, err := New(STDOUT)
	require.NoError(t, err)

	var out bytes.Buffer
	w.stdout = &out

	writeTrace(t, w, []*WriterRegister{{Source: 3, Destination: 4, Port: 100, Size: 99, StartTime: 0.000000001}})
	require.NoError(t, w.Close())

	assert.Equal(t, "1\n3 4 3 100 99 0.000000001\n", out.String())
}

func TestWriterMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "trace.txt"))
	assert.Error(t, err)
}

func TestReadRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "trace.txt")

	w, err := New(filename)
	require.NoError(t, err)

	registers := []*WriterRegister{
		{Source: 0, Destination: 1, Port: 100, Size: 500, StartTime: 2.000000001},
		{Source: 1, Destination: 0, Port: 100, Size: 600, StartTime: 2.000000002},
		{Source: 0, Destination: 1, Port: 100, Size: 700, StartTime: 2.75},
	}
	writeTrace(t, w, registers)
	require.NoError(t, w.Close())
	assert.Equal(t, uint64(3), w.Count())

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()

	read, err := Read(file)
	require.NoError(t, err)
	assert.Equal(t, registers, read)
}

func TestReadHugeHeader(t *testing.T) {
	for _, header := range []string{"1000000000000000000", "18446744073709551615"} {
		_, err := Read(strings.NewReader(header + "\n0 1 3 100 10 2.000000001\n"))
		assert.ErrorIs(t, err, ErrMalformedTrace, header)
	}
}

func TestReadRejectsMismatchedCount(t *testing.T) {
	for name, trace := range map[string]string{
		"empty":        "",
		"bad header":   "x\n",
		"too few":      "2\n0 1 3 100 5 1.000000000\n",
		"too many":     "0\n0 1 3 100 5 1.000000000\n",
		"bad columns":  "1\n0 1 3 100 5\n",
		"bad priority": "1\n0 1 4 100 5 1.000000000\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(trace))
			assert.ErrorIs(t, err, ErrMalformedTrace)
		})
	}
}

func TestManifest(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "trace.yaml")

	manifest := &Manifest{
		Trace:            "trace.txt",
		Distribution:     "web_search.txt",
		Hosts:            320,
		Load:             0.3,
		Bandwidth:        1e11,
		Duration:         0.1,
		BaseTime:         2,
		Port:             DEFAULT_PORT,
		Seed:             42,
		MeanFlowSize:     1.6e6,
		InterArrivalMean: 426666.6,
		EstimatedFlows:   75000,
		Flows:            74812,
		TotalBytes:       119699200000,
		OfferedLoad:      0.2992,
	}

	require.NoError(t, WriteManifest(filename, manifest))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hosts: 320")
	assert.Contains(t, string(data), "flows: 74812")

	read, err := ReadManifest(filename)
	require.NoError(t, err)
	assert.Equal(t, manifest, read)
}

func TestCheck(t *testing.T) {
	stats, err := Check([]*WriterRegister{
		{Source: 0, Destination: 1, Port: 100, Size: 10, StartTime: 1},
		{Source: 2, Destination: 1, Port: 100, Size: 20, StartTime: 1},
		{Source: 1, Destination: 0, Port: 100, Size: 30, StartTime: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, &TraceStats{Flows: 3, TotalBytes: 60, Hosts: 3, FirstStart: 1, LastStart: 3}, stats)

	empty, err := Check(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Flows)
}

func TestCheckRejects(t *testing.T) {
	_, err := Check([]*WriterRegister{{Source: 4, Destination: 4, StartTime: 1}})
	assert.ErrorIs(t, err, ErrMalformedTrace)

	_, err = Check([]*WriterRegister{
		{Source: 0, Destination: 1, StartTime: 2},
		{Source: 1, Destination: 0, StartTime: 1},
	})
	assert.ErrorIs(t, err, ErrMalformedTrace)
}
