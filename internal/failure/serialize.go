// Copyright 2026 The ctestrun Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package failure

import (
	"encoding/binary"

	"ctestrun/internal/stage"
	"ctestrun/internal/xerrors"
)

// Wire layout. The original representation replaces interior pointers with
// offsets from the block's base so the whole record is one relocatable,
// copyable byte block; a safe Go struct holds no interior pointers to begin
// with, so this rewrite keeps the *wire* shape offset-based (for
// compatibility with the event-pipe wire contract and so the layout stays
// self-describing on the pipe) while Serialize/Deserialize simply encode and
// decode between that block and an ordinary *Failure — there is no
// in-memory pointer rewriting to do on this side.
//
// header (13 bytes): stage(1) descOff(4) locOff(4) stacktraceOff(4)
// a zero offset means "absent" for loc/stacktrace.
const headerSize = 13

// Serialize flattens f into one contiguous, position-independent byte
// block suitable for a single write(2) to the event pipe.
func Serialize(f *Failure) ([]byte, error) {
	if f == nil {
		return nil, xerrors.New("cannot serialize a nil failure")
	}

	descBlock := encodeBytes([]byte(f.Description))

	var locBlock []byte
	if f.Location != nil {
		locBlock = encodeLocation(f.Location)
	}

	var stBlock []byte
	if f.Stacktrace != nil {
		stBlock = encodeStacktrace(f.Stacktrace)
	}

	descOff := uint32(headerSize)
	locOff := uint32(0)
	stOff := uint32(0)

	next := descOff + uint32(len(descBlock))
	if locBlock != nil {
		locOff = next
		next += uint32(len(locBlock))
	}
	if stBlock != nil {
		stOff = next
		next += uint32(len(stBlock))
	}

	buf := make([]byte, next)
	buf[0] = byte(f.Stage)
	binary.LittleEndian.PutUint32(buf[1:5], descOff)
	binary.LittleEndian.PutUint32(buf[5:9], locOff)
	binary.LittleEndian.PutUint32(buf[9:13], stOff)

	copy(buf[descOff:], descBlock)
	if locBlock != nil {
		copy(buf[locOff:], locBlock)
	}
	if stBlock != nil {
		copy(buf[stOff:], stBlock)
	}
	return buf, nil
}

// Deserialize restores a *Failure from a block produced by Serialize.
// Interior offsets out of range are treated as a malformed buffer and the
// block is discarded with an error rather than partially decoded.
func Deserialize(buf []byte) (*Failure, error) {
	if len(buf) < headerSize {
		return nil, xerrors.New("failure block shorter than header")
	}
	st := stage.Stage(buf[0])
	descOff := binary.LittleEndian.Uint32(buf[1:5])
	locOff := binary.LittleEndian.Uint32(buf[5:9])
	stOff := binary.LittleEndian.Uint32(buf[9:13])

	desc, _, err := decodeBytesAt(buf, descOff)
	if err != nil {
		return nil, xerrors.Wrap(err, "decoding description")
	}

	var loc *Location
	if locOff != 0 {
		loc, err = decodeLocationAt(buf, locOff)
		if err != nil {
			return nil, xerrors.Wrap(err, "decoding location")
		}
	}

	var st2 *Stacktrace
	if stOff != 0 {
		st2, err = decodeStacktraceAt(buf, stOff)
		if err != nil {
			return nil, xerrors.Wrap(err, "decoding stacktrace")
		}
	}

	return &Failure{
		Stage:       st,
		Description: string(desc),
		Location:    loc,
		Stacktrace:  st2,
	}, nil
}

func encodeBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}

// decodeBytesAt decodes a length-prefixed byte string starting at off,
// returning the bytes and the offset immediately following them. The
// remaining-length argument for any nested read is always computed from
// len(buf)-off, never by reusing an already-advanced offset variable — this
// is the fix for the original's flagged `len = (stacktrace - buf)` versus
// `len - (stacktrace - buf)` ambiguity (see DESIGN.md).
func decodeBytesAt(buf []byte, off uint32) ([]byte, uint32, error) {
	if uint64(off)+4 > uint64(len(buf)) {
		return nil, 0, xerrors.New("length prefix out of range")
	}
	n := binary.LittleEndian.Uint32(buf[off : off+4])
	start := off + 4
	if uint64(start)+uint64(n) > uint64(len(buf)) {
		return nil, 0, xerrors.New("byte string out of range")
	}
	return buf[start : start+n], start + n, nil
}

func encodeLocation(loc *Location) []byte {
	fileBlock := encodeBytes([]byte(loc.File))
	out := make([]byte, len(fileBlock)+4)
	copy(out, fileBlock)
	binary.LittleEndian.PutUint32(out[len(fileBlock):], uint32(loc.Line))
	return out
}

func decodeLocationAt(buf []byte, off uint32) (*Location, error) {
	file, next, err := decodeBytesAt(buf, off)
	if err != nil {
		return nil, err
	}
	if uint64(next)+4 > uint64(len(buf)) {
		return nil, xerrors.New("location line out of range")
	}
	line := int(binary.LittleEndian.Uint32(buf[next : next+4]))
	return &Location{File: string(file), Line: line}, nil
}

func encodeStacktrace(st *Stacktrace) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(len(st.Frames)))
	for _, fr := range st.Frames {
		fb := make([]byte, 8)
		binary.LittleEndian.PutUint64(fb, fr.Addr)
		out = append(out, fb...)
		out = append(out, encodeBytes([]byte(fr.File))...)
		lb := make([]byte, 4)
		binary.LittleEndian.PutUint32(lb, uint32(fr.Line))
		out = append(out, lb...)
	}
	return out
}

func decodeStacktraceAt(buf []byte, off uint32) (*Stacktrace, error) {
	if uint64(off)+4 > uint64(len(buf)) {
		return nil, xerrors.New("stacktrace count out of range")
	}
	count := binary.LittleEndian.Uint32(buf[off : off+4])
	pos := off + 4
	frames := make([]Frame, 0, count)
	for i := uint32(0); i < count; i++ {
		if uint64(pos)+8 > uint64(len(buf)) {
			return nil, xerrors.New("stacktrace frame addr out of range")
		}
		addr := binary.LittleEndian.Uint64(buf[pos : pos+8])
		pos += 8
		file, next, err := decodeBytesAt(buf, pos)
		if err != nil {
			return nil, err
		}
		pos = next
		if uint64(pos)+4 > uint64(len(buf)) {
			return nil, xerrors.New("stacktrace frame line out of range")
		}
		line := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4
		frames = append(frames, Frame{Addr: addr, File: string(file), Line: line})
	}
	return &Stacktrace{Frames: frames}, nil
}
