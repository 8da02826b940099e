// Package spk reads JPL SPK ephemeris kernels (DAF files such as
// de440s.bsp) and evaluates their Chebyshev position segments.
//
// Only what the calendar engine needs is implemented: the DAF file and
// summary records, and data types 2 (position-only Chebyshev) and 3
// (position and velocity Chebyshev, velocity ignored). Positions are
// returned in the kernel's native frame (ICRF/J2000 equatorial) and units
// (km); frame conversion is the caller's concern.
package spk

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const recordLen = 1024

// Segment is one descriptor from the DAF summary chain.
type Segment struct {
	StartET float64 // seconds past J2000 TDB
	EndET   float64
	Target  int
	Center  int
	Frame   int
	Type    int
	begin   int // first DAF address of the segment data (1-based, doubles)
	end     int // last DAF address
}

// File is an open SPK kernel. The whole kernel is held in memory; after
// Open it is immutable and safe for concurrent use.
type File struct {
	data     []byte
	order    binary.ByteOrder
	Segments []Segment
}

// Open reads and indexes an SPK kernel.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < recordLen {
		return nil, fmt.Errorf("spk: %s: truncated file record", path)
	}

	idword := string(data[0:8])
	if idword != "DAF/SPK " && idword != "NAIF/DAF" {
		return nil, fmt.Errorf("spk: %s: not an SPK kernel (idword %q)", path, idword)
	}

	f := &File{data: data}
	switch string(data[88:96]) {
	case "LTL-IEEE":
		f.order = binary.LittleEndian
	case "BIG-IEEE":
		f.order = binary.BigEndian
	default:
		// Pre-FTP-validation kernels leave the format field blank; guess
		// from ND, which must decode to 2 for SPK.
		if binary.LittleEndian.Uint32(data[8:12]) == 2 {
			f.order = binary.LittleEndian
		} else {
			f.order = binary.BigEndian
		}
	}

	nd := int(f.order.Uint32(data[8:12]))
	ni := int(f.order.Uint32(data[12:16]))
	if nd != 2 || ni != 6 {
		return nil, fmt.Errorf("spk: %s: unexpected descriptor layout ND=%d NI=%d", path, nd, ni)
	}
	fward := int(f.order.Uint32(data[76:80]))

	if err := f.readSummaries(fward); err != nil {
		return nil, fmt.Errorf("spk: %s: %w", path, err)
	}
	if len(f.Segments) == 0 {
		return nil, fmt.Errorf("spk: %s: no segments", path)
	}
	return f, nil
}

// double reads the DAF word at the 1-based double address a.
func (f *File) double(a int) (float64, error) {
	off := (a - 1) * 8
	if off < 0 || off+8 > len(f.data) {
		return 0, fmt.Errorf("address %d out of file", a)
	}
	return math.Float64frombits(f.order.Uint64(f.data[off : off+8])), nil
}

func (f *File) readSummaries(rec int) error {
	const summarySize = 5 // ND + (NI+1)/2 doubles for an SPK
	for rec != 0 {
		base := (rec - 1) * recordLen
		if base < 0 || base+recordLen > len(f.data) {
			return fmt.Errorf("summary record %d out of file", rec)
		}
		next := math.Float64frombits(f.order.Uint64(f.data[base : base+8]))
		nsum := math.Float64frombits(f.order.Uint64(f.data[base+16 : base+24]))

		for i := 0; i < int(nsum); i++ {
			off := base + 24 + i*summarySize*8
			startET := math.Float64frombits(f.order.Uint64(f.data[off : off+8]))
			endET := math.Float64frombits(f.order.Uint64(f.data[off+8 : off+16]))
			ints := f.data[off+16 : off+16+24]
			f.Segments = append(f.Segments, Segment{
				StartET: startET,
				EndET:   endET,
				Target:  int(int32(f.order.Uint32(ints[0:4]))),
				Center:  int(int32(f.order.Uint32(ints[4:8]))),
				Frame:   int(int32(f.order.Uint32(ints[8:12]))),
				Type:    int(int32(f.order.Uint32(ints[12:16]))),
				begin:   int(int32(f.order.Uint32(ints[16:20]))),
				end:     int(int32(f.order.Uint32(ints[20:24]))),
			})
		}
		rec = int(next)
	}
	return nil
}

// segmentFor picks the segment covering (target, center, et); the last
// matching segment wins, as in the SPICE search order.
func (f *File) segmentFor(target, center int, et float64) (*Segment, error) {
	for i := len(f.Segments) - 1; i >= 0; i-- {
		s := &f.Segments[i]
		if s.Target == target && s.Center == center && et >= s.StartET && et <= s.EndET {
			return s, nil
		}
	}
	return nil, fmt.Errorf("spk: no segment for target %d center %d at et %.0f", target, center, et)
}

// Coverage returns the common ET window of the segments for the given
// (target, center) pairs, or an error when one of them is absent.
func (f *File) Coverage(pairs [][2]int) (startET, endET float64, err error) {
	startET = math.Inf(-1)
	endET = math.Inf(1)
	for _, pair := range pairs {
		found := false
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, s := range f.Segments {
			if s.Target != pair[0] || s.Center != pair[1] {
				continue
			}
			found = true
			lo = math.Min(lo, s.StartET)
			hi = math.Max(hi, s.EndET)
		}
		if !found {
			return 0, 0, fmt.Errorf("spk: no segment for target %d center %d", pair[0], pair[1])
		}
		startET = math.Max(startET, lo)
		endET = math.Min(endET, hi)
	}
	return startET, endET, nil
}

// Position evaluates the (target, center) segment at et and returns the
// position vector in km.
func (f *File) Position(target, center int, et float64) ([3]float64, error) {
	var pos [3]float64
	seg, err := f.segmentFor(target, center, et)
	if err != nil {
		return pos, err
	}
	if seg.Type != 2 && seg.Type != 3 {
		return pos, fmt.Errorf("spk: segment type %d not supported (target %d center %d)", seg.Type, target, center)
	}

	// Segment directory: the last four doubles are INIT, INTLEN, RSIZE, N.
	var dir [4]float64
	for i := range dir {
		v, err := f.double(seg.end - 3 + i)
		if err != nil {
			return pos, err
		}
		dir[i] = v
	}
	init, intlen := dir[0], dir[1]
	rsize, n := int(dir[2]), int(dir[3])
	if rsize < 5 || n < 1 || intlen <= 0 {
		return pos, fmt.Errorf("spk: malformed segment directory (target %d center %d)", target, center)
	}

	idx := int((et - init) / intlen)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	rec := make([]float64, rsize)
	base := seg.begin + idx*rsize
	for i := range rec {
		v, err := f.double(base + i)
		if err != nil {
			return pos, err
		}
		rec[i] = v
	}

	mid, radius := rec[0], rec[1]
	ncoef := (rsize - 2) / 3
	if seg.Type == 3 {
		ncoef = (rsize - 2) / 6
	}
	s := (et - mid) / radius
	if s < -1.000001 || s > 1.000001 {
		return pos, fmt.Errorf("spk: et %.0f outside record window (target %d center %d)", et, target, center)
	}

	for k := 0; k < 3; k++ {
		pos[k] = chebyshev(rec[2+k*ncoef:2+(k+1)*ncoef], s)
	}
	return pos, nil
}

// chebyshev evaluates a Chebyshev series with Clenshaw recurrence.
func chebyshev(c []float64, x float64) float64 {
	var b1, b2 float64
	for j := len(c) - 1; j >= 1; j-- {
		b1, b2 = 2*x*b1-b2+c[j], b1
	}
	return x*b1 - b2 + c[0]
}
