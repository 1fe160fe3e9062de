package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// magic identifies a .kjc (compiled hangeulscript) file.
const magic = "KJC1"

// Serialize writes c to w as five LEB128-length-prefixed sections — code,
// constants, names, classes, and a run-length line-info table — per spec.md §4.3's
// "simple LEB128-length-prefix per section is acceptable" on-disk format
// note. encoding/binary's Uvarint/PutUvarint is exactly LEB128 (unsigned,
// little-endian base-128, continuation bit in the high bit of each byte),
// so this is stdlib-only: there is no ecosystem LEB128 codec in the pack to
// reach for instead, and the format is small enough that hand-rolling a
// bespoke one would duplicate what binary.PutUvarint already is.
func Serialize(c *Chunk, w io.Writer) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := writeSection(w, c.Code); err != nil {
		return err
	}
	constBytes, err := encodeConstants(c.Constants)
	if err != nil {
		return err
	}
	if err := writeSection(w, constBytes); err != nil {
		return err
	}
	if err := writeSection(w, encodeNames(c.Names)); err != nil {
		return err
	}
	if err := writeSection(w, encodeClasses(c.Classes)); err != nil {
		return err
	}
	return writeSection(w, encodeLineRuns(c.Debug))
}

// Deserialize reads back a Chunk written by Serialize. Line info is
// round-tripped only as Line numbers (File/Function/Column are not
// persisted — a .kjc file is always paired with its source for --verbose
// rendering, so losing column/file here costs nothing the CLI needs).
func Deserialize(r io.Reader) (*Chunk, error) {
	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}
	if string(hdr) != magic {
		return nil, fmt.Errorf("bytecode: not a .kjc file (bad magic %q)", hdr)
	}
	code, err := readSection(r)
	if err != nil {
		return nil, err
	}
	constBytes, err := readSection(r)
	if err != nil {
		return nil, err
	}
	constants, err := decodeConstants(constBytes)
	if err != nil {
		return nil, err
	}
	nameBytes, err := readSection(r)
	if err != nil {
		return nil, err
	}
	classBytes, err := readSection(r)
	if err != nil {
		return nil, err
	}
	classes, err := decodeClasses(classBytes)
	if err != nil {
		return nil, err
	}
	lineBytes, err := readSection(r)
	if err != nil {
		return nil, err
	}
	debug, err := decodeLineRuns(lineBytes, len(code))
	if err != nil {
		return nil, err
	}
	return &Chunk{
		Code:      code,
		Constants: constants,
		Names:     decodeNames(nameBytes),
		Classes:   classes,
		Debug:     debug,
	}, nil
}

func writeSection(w io.Writer, body []byte) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(body)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readSection(r io.Reader) ([]byte, error) {
	length, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readUvarint reads one LEB128 value a byte at a time, since
// binary.Uvarint operates on an in-memory slice rather than an io.Reader.
func readUvarint(r io.Reader) (uint64, error) {
	var x uint64
	var s uint
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		if b[0] < 0x80 {
			return x | uint64(b[0])<<s, nil
		}
		x |= uint64(b[0]&0x7f) << s
		s += 7
	}
}

// encodeConstants supports only the literal kinds the compiler ever emits
// into Constants (int64, float64, string, bool); a function value (from
// BUILD_FUNCTION) is never itself a chunk constant — its body lives inline
// in Code at the address BUILD_FUNCTION names — so no recursive case is
// needed here.
func encodeConstants(constants []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	var countBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(countBuf[:], uint64(len(constants)))
	buf.Write(countBuf[:n])
	for _, v := range constants {
		switch val := v.(type) {
		case int64:
			buf.WriteByte('i')
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], uint64(val))
			buf.Write(b[:])
		case float64:
			buf.WriteByte('f')
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], math.Float64bits(val))
			buf.Write(b[:])
		case string:
			buf.WriteByte('s')
			writeUvarintString(&buf, val)
		case bool:
			buf.WriteByte('b')
			if val {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		default:
			return nil, fmt.Errorf("bytecode: constant of type %T is not serializable", v)
		}
	}
	return buf.Bytes(), nil
}

func decodeConstants(data []byte) ([]interface{}, error) {
	r := bytes.NewReader(data)
	count, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, count)
	for i := uint64(0); i < count; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch tag {
		case 'i':
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			out = append(out, int64(binary.BigEndian.Uint64(b[:])))
		case 'f':
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			out = append(out, math.Float64frombits(binary.BigEndian.Uint64(b[:])))
		case 's':
			s, err := readUvarintString(r)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		case 'b':
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			out = append(out, b != 0)
		default:
			return nil, fmt.Errorf("bytecode: unknown constant tag %q", tag)
		}
	}
	return out, nil
}

// encodeClasses persists the class registry a ClassDecl lowers to (see
// ClassInfo) alongside the code it backs, so a .kjc file compiled from a
// program with classes round-trips its NEW_EXPR support, not just its
// flat-function one.
func encodeClasses(classes []ClassInfo) []byte {
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(len(classes)))
	for _, info := range classes {
		writeUvarintString(&buf, info.Name)
		writeUvarintString(&buf, info.Superclass)
		writeUvarint(&buf, uint64(len(info.Fields)))
		for _, f := range info.Fields {
			writeUvarintString(&buf, f)
		}
		writeUvarint(&buf, uint64(len(info.Methods)))
		for name, mangled := range info.Methods {
			writeUvarintString(&buf, name)
			writeUvarintString(&buf, mangled)
		}
		writeUvarintString(&buf, info.Ctor)
	}
	return buf.Bytes()
}

func decodeClasses(data []byte) ([]ClassInfo, error) {
	r := bytes.NewReader(data)
	count, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]ClassInfo, 0, count)
	for i := uint64(0); i < count; i++ {
		info := ClassInfo{Methods: map[string]string{}}
		if info.Name, err = readUvarintString(r); err != nil {
			return nil, err
		}
		if info.Superclass, err = readUvarintString(r); err != nil {
			return nil, err
		}
		fieldCount, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < fieldCount; j++ {
			f, err := readUvarintString(r)
			if err != nil {
				return nil, err
			}
			info.Fields = append(info.Fields, f)
		}
		methodCount, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < methodCount; j++ {
			name, err := readUvarintString(r)
			if err != nil {
				return nil, err
			}
			mangled, err := readUvarintString(r)
			if err != nil {
				return nil, err
			}
			info.Methods[name] = mangled
		}
		if info.Ctor, err = readUvarintString(r); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func encodeNames(names []string) []byte {
	var buf bytes.Buffer
	var countBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(countBuf[:], uint64(len(names)))
	buf.Write(countBuf[:n])
	for _, name := range names {
		writeUvarintString(&buf, name)
	}
	return buf.Bytes()
}

func decodeNames(data []byte) []string {
	r := bytes.NewReader(data)
	count, err := readUvarint(r)
	if err != nil {
		return nil
	}
	out := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		s, err := readUvarintString(r)
		if err != nil {
			return out
		}
		out = append(out, s)
	}
	return out
}

// encodeLineRuns run-length-encodes Debug.Line (runs of identical
// consecutive line numbers), since most instructions share their
// predecessor's source line — far more compact than one varint per byte of
// Code.
func encodeLineRuns(debug []DebugInfo) []byte {
	var runs bytes.Buffer
	var runCount uint64
	i := 0
	for i < len(debug) {
		line := debug[i].Line
		start := i
		for i < len(debug) && debug[i].Line == line {
			i++
		}
		writeUvarint(&runs, uint64(start))
		writeUvarint(&runs, uint64(i-start))
		writeUvarint(&runs, uint64(line))
		runCount++
	}
	var buf bytes.Buffer
	writeUvarint(&buf, runCount)
	buf.Write(runs.Bytes())
	return buf.Bytes()
}

func decodeLineRuns(data []byte, codeLen int) ([]DebugInfo, error) {
	r := bytes.NewReader(data)
	count, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]DebugInfo, codeLen)
	for i := uint64(0); i < count; i++ {
		start, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		length, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		line, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		for j := uint64(0); j < length && int(start+j) < codeLen; j++ {
			out[start+j] = DebugInfo{Line: int(line)}
		}
	}
	return out, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], v)
	buf.Write(b[:n])
}

func writeUvarintString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readUvarintString(r *bytes.Reader) (string, error) {
	length, err := readUvarint(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
