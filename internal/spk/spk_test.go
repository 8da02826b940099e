package spk

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestKernel builds a minimal little-endian SPK: one Type 2 segment
// for the Moon relative to the EMB, a single Chebyshev record of three
// coefficients per axis covering ET 0..1000.
//
//	x(s) = 1 + 2·T1(s) + 3·T2(s)
//	y(s) = 4 + 5·T1(s) + 6·T2(s)
//	z(s) = 7 + 8·T1(s) + 9·T2(s)
func writeTestKernel(t *testing.T) string {
	t.Helper()

	le := binary.LittleEndian
	var buf bytes.Buffer

	// Record 1: file record.
	buf.WriteString("DAF/SPK ")
	require.NoError(t, binary.Write(&buf, le, int32(2))) // ND
	require.NoError(t, binary.Write(&buf, le, int32(6))) // NI
	buf.Write(bytes.Repeat([]byte{' '}, 60))             // LOCIFN
	require.NoError(t, binary.Write(&buf, le, int32(2))) // FWARD
	require.NoError(t, binary.Write(&buf, le, int32(2))) // BWARD
	require.NoError(t, binary.Write(&buf, le, int32(400)))
	buf.WriteString("LTL-IEEE")
	buf.Write(make([]byte, recordLen-buf.Len()))

	// Record 2: summary record. Control doubles, then one summary.
	require.NoError(t, binary.Write(&buf, le, float64(0))) // NEXT
	require.NoError(t, binary.Write(&buf, le, float64(0))) // PREV
	require.NoError(t, binary.Write(&buf, le, float64(1))) // NSUM
	require.NoError(t, binary.Write(&buf, le, float64(0)))
	require.NoError(t, binary.Write(&buf, le, float64(1000)))
	for _, v := range []int32{301, 3, 1, 2, 385, 399} { // target center frame type begin end
		require.NoError(t, binary.Write(&buf, le, v))
	}
	buf.Write(make([]byte, 2*recordLen-buf.Len()))

	// Record 3: name record.
	buf.Write(make([]byte, recordLen))

	// Record 4: segment data at DAF address 385.
	data := []float64{
		500, 500, // MID, RADIUS
		1, 2, 3, // x coefficients
		4, 5, 6, // y
		7, 8, 9, // z
		0, 1000, 11, 1, // INIT, INTLEN, RSIZE, N
	}
	for _, v := range data {
		require.NoError(t, binary.Write(&buf, le, v))
	}
	buf.Write(make([]byte, 4*recordLen-buf.Len()))

	path := filepath.Join(t.TempDir(), "test.bsp")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestOpen_IndexesSegments(t *testing.T) {
	f, err := Open(writeTestKernel(t))
	require.NoError(t, err)
	require.Len(t, f.Segments, 1)

	s := f.Segments[0]
	assert.Equal(t, 301, s.Target)
	assert.Equal(t, 3, s.Center)
	assert.Equal(t, 2, s.Type)
	assert.Equal(t, float64(0), s.StartET)
	assert.Equal(t, float64(1000), s.EndET)
}

func TestPosition_ChebyshevEvaluation(t *testing.T) {
	f, err := Open(writeTestKernel(t))
	require.NoError(t, err)

	// T0=1, T1=s, T2=2s²-1 evaluated by hand at s = -1, 0, 1.
	tests := []struct {
		et   float64
		want [3]float64
	}{
		{0, [3]float64{1 - 2 + 3, 4 - 5 + 6, 7 - 8 + 9}},    // s = -1
		{500, [3]float64{1 - 3, 4 - 6, 7 - 9}},              // s = 0
		{1000, [3]float64{1 + 2 + 3, 4 + 5 + 6, 7 + 8 + 9}}, // s = 1
	}
	for _, tt := range tests {
		pos, err := f.Position(301, 3, tt.et)
		require.NoError(t, err)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, tt.want[k], pos[k], 1e-12, "et %v axis %d", tt.et, k)
		}
	}

	// Mid-interval spot check at s = 0.5: T2(0.5) = -0.5.
	pos, err := f.Position(301, 3, 750)
	require.NoError(t, err)
	assert.InDelta(t, 1+2*0.5+3*-0.5, pos[0], 1e-12)
}

func TestPosition_UnknownBody(t *testing.T) {
	f, err := Open(writeTestKernel(t))
	require.NoError(t, err)

	_, err = f.Position(399, 3, 500)
	assert.Error(t, err)
	_, err = f.Position(301, 3, 5000)
	assert.Error(t, err, "outside the segment's ET window")
}

func TestCoverage(t *testing.T) {
	f, err := Open(writeTestKernel(t))
	require.NoError(t, err)

	lo, hi, err := f.Coverage([][2]int{{301, 3}})
	require.NoError(t, err)
	assert.Equal(t, float64(0), lo)
	assert.Equal(t, float64(1000), hi)

	_, _, err = f.Coverage([][2]int{{301, 3}, {10, 0}})
	assert.Error(t, err, "missing pair must be reported")
}

func TestOpen_RejectsGarbage(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short.bsp")
	require.NoError(t, os.WriteFile(short, []byte("DAF/SPK "), 0o644))
	_, err := Open(short)
	assert.Error(t, err)

	wrong := filepath.Join(dir, "wrong.bsp")
	require.NoError(t, os.WriteFile(wrong, make([]byte, 2048), 0o644))
	_, err = Open(wrong)
	assert.Error(t, err)

	_, err = Open(filepath.Join(dir, "missing.bsp"))
	assert.Error(t, err)
}
