package forkrng

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"slices"
	"time"
	"unsafe"

	"google.golang.org/protobuf/proto"
)

// Labeler is implemented by types that supply their own stable label
// encoding. AppendLabel must append the same bytes for equal logical values
// on every platform and every run.
type Labeler interface {
	AppendLabel(b []byte) []byte
}

// Label encoding tags. These bytes are part of the reproducibility contract:
// changing any of them changes every generator derived from a label.
const (
	tagBool    byte = 0x01
	tagInt     byte = 0x02
	tagUint    byte = 0x03
	tagFloat   byte = 0x04
	tagComplex byte = 0x05
	tagString  byte = 0x06
	tagBytes   byte = 0x07
	tagSeq     byte = 0x08
	tagMap     byte = 0x09
	tagStruct  byte = 0x0A
	tagNil     byte = 0x0B
	tagCycle   byte = 0x0C
	tagLabeler byte = 0x0D
	tagProto   byte = 0x0E
	tagOpaque  byte = 0x0F
	tagTime    byte = 0x10
)

// canonicalNaN is the bit pattern every NaN is encoded as.
const canonicalNaN = 0x7FF8000000000001

var (
	labelerType = reflect.TypeFor[Labeler]()
	protoType   = reflect.TypeFor[proto.Message]()
	timeType    = reflect.TypeFor[time.Time]()
)

// AppendLabel appends the canonical encoding of v to b and returns the
// extended buffer. Fork and New absorb exactly these bytes.
//
// The encoding is structural: integers are widened to 64 bits, strings and
// byte slices are length-prefixed, struct fields are written in declaration
// order without their names, and map entries are sorted by their encoded
// keys. Pointers and interfaces are followed to their targets, and reference
// cycles are cut with a back-reference. Values implementing Labeler or
// proto.Message use their own encodings. All multi-byte integers are
// little-endian.
func AppendLabel(b []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(b, tagNil)
	case string:
		return appendString(b, tagString, x)
	case []byte:
		return appendString(b, tagBytes, string(x))
	case int:
		return appendUint64(append(b, tagInt), uint64(x))
	case int64:
		return appendUint64(append(b, tagInt), uint64(x))
	case uint64:
		return appendUint64(append(b, tagUint), x)
	case bool:
		return appendBool(b, x)
	}
	e := encoder{buf: b}
	e.value(addressable(reflect.ValueOf(v)))
	return e.buf
}

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type encoder struct {
	buf  []byte
	path []visit
}

func (e *encoder) value(rv reflect.Value) {
	if !rv.IsValid() {
		e.buf = append(e.buf, tagNil)
		return
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			e.buf = append(e.buf, tagNil)
			return
		}
	}
	if x, ok := exposed(rv); ok {
		rv = x
	}

	if e.custom(rv) {
		return
	}

	switch rv.Kind() {
	case reflect.Bool:
		e.buf = appendBool(e.buf, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf = appendUint64(append(e.buf, tagInt), uint64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf = appendUint64(append(e.buf, tagUint), rv.Uint())
	case reflect.Float32, reflect.Float64:
		e.buf = appendFloat(append(e.buf, tagFloat), rv.Float())
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		e.buf = appendFloat(appendFloat(append(e.buf, tagComplex), real(c)), imag(c))
	case reflect.String:
		e.buf = appendString(e.buf, tagString, rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.byteSeq(rv)
			return
		}
		e.enter(visit{ptr: rv.Pointer(), typ: rv.Type(), len: rv.Len()}, func() { e.seq(rv) })
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			e.byteSeq(rv)
			return
		}
		e.seq(rv)
	case reflect.Map:
		e.enter(visit{ptr: rv.Pointer(), typ: rv.Type()}, func() { e.mapping(rv) })
	case reflect.Struct:
		n := rv.NumField()
		e.buf = binary.AppendUvarint(append(e.buf, tagStruct), uint64(n))
		for i := 0; i < n; i++ {
			e.value(rv.Field(i))
		}
	case reflect.Pointer:
		e.enter(visit{ptr: rv.Pointer(), typ: rv.Type()}, func() { e.value(rv.Elem()) })
	case reflect.Interface:
		e.value(addressable(rv.Elem()))
	default:
		// func, chan and unsafe.Pointer have no stable content.
		e.buf = appendString(e.buf, tagOpaque, rv.Type().String())
	}
}

// custom handles types with their own encoding. It reports whether rv was
// written.
func (e *encoder) custom(rv reflect.Value) bool {
	t := rv.Type()
	direct := t == timeType || t.Implements(labelerType) || t.Implements(protoType)
	if !direct {
		pt := reflect.PointerTo(t)
		if !pt.Implements(labelerType) && !pt.Implements(protoType) {
			return false
		}
	}
	if !rv.CanInterface() {
		return false
	}
	if !direct {
		if !rv.CanAddr() {
			return false
		}
		rv = rv.Addr()
	}

	switch x := rv.Interface().(type) {
	case Labeler:
		e.buf = append(e.buf, tagLabeler)
		e.lengthPrefixed(x.AppendLabel)
	case proto.Message:
		raw, err := proto.MarshalOptions{Deterministic: true}.Marshal(x)
		if err != nil {
			name := string(x.ProtoReflect().Descriptor().FullName())
			e.buf = appendString(e.buf, tagOpaque, name)
			return true
		}
		e.buf = appendString(e.buf, tagProto, string(raw))
	case time.Time:
		e.buf = appendUint64(append(e.buf, tagTime), uint64(x.Unix()))
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(x.Nanosecond()))
	default:
		return false
	}
	return true
}

// lengthPrefixed runs fn on a scratch buffer and appends its output with a
// length prefix.
func (e *encoder) lengthPrefixed(fn func([]byte) []byte) {
	scratch := getBuffer()
	defer putBuffer(scratch)
	*scratch = fn((*scratch)[:0])
	e.buf = binary.AppendUvarint(e.buf, uint64(len(*scratch)))
	e.buf = append(e.buf, *scratch...)
}

func (e *encoder) byteSeq(rv reflect.Value) {
	n := rv.Len()
	e.buf = binary.AppendUvarint(append(e.buf, tagBytes), uint64(n))
	if rv.Kind() == reflect.Slice {
		e.buf = append(e.buf, rv.Bytes()...)
		return
	}
	for i := 0; i < n; i++ {
		e.buf = append(e.buf, byte(rv.Index(i).Uint()))
	}
}

func (e *encoder) seq(rv reflect.Value) {
	n := rv.Len()
	e.buf = binary.AppendUvarint(append(e.buf, tagSeq), uint64(n))
	for i := 0; i < n; i++ {
		e.value(rv.Index(i))
	}
}

type mapEntry struct {
	key, val []byte
}

func (e *encoder) mapping(rv reflect.Value) {
	entries := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		sub := encoder{path: e.path}
		sub.value(addressable(iter.Key()))
		k := sub.buf
		sub.buf = nil
		sub.value(addressable(iter.Value()))
		entries = append(entries, mapEntry{key: k, val: sub.buf})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		if c := bytes.Compare(a.key, b.key); c != 0 {
			return c
		}
		return bytes.Compare(a.val, b.val)
	})

	e.buf = binary.AppendUvarint(append(e.buf, tagMap), uint64(len(entries)))
	for _, ent := range entries {
		e.buf = append(e.buf, ent.key...)
		e.buf = append(e.buf, ent.val...)
	}
}

// enter encodes a reference value with fn unless it is already on the
// current path, in which case a back-reference is written instead.
func (e *encoder) enter(v visit, fn func()) {
	for i := len(e.path) - 1; i >= 0; i-- {
		if e.path[i] == v {
			e.buf = binary.AppendUvarint(append(e.buf, tagCycle), uint64(len(e.path)-i))
			return
		}
	}
	e.path = append(e.path, v)
	fn()
	e.path = e.path[:len(e.path)-1]
}

// addressable copies composite values into addressable storage so that
// methods on their unexported fields remain reachable.
func addressable(rv reflect.Value) reflect.Value {
	if !rv.IsValid() || rv.CanAddr() || !rv.CanInterface() {
		return rv
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Array:
		c := reflect.New(rv.Type()).Elem()
		c.Set(rv)
		return c
	}
	return rv
}

// exposed returns rv in a form whose contents and methods can be reached.
// Values read through unexported struct fields are re-derived from their
// address; it reports false if that is impossible.
func exposed(rv reflect.Value) (reflect.Value, bool) {
	if rv.CanInterface() {
		return rv, true
	}
	if !rv.CanAddr() {
		return rv, false
	}
	return reflect.NewAt(rv.Type(), unsafe.Pointer(rv.UnsafeAddr())).Elem(), true
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, tagBool, 1)
	}
	return append(b, tagBool, 0)
}

func appendUint64(b []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(b, v)
}

func appendFloat(b []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return appendUint64(b, canonicalNaN)
	case f == 0:
		return appendUint64(b, 0)
	}
	return appendUint64(b, math.Float64bits(f))
}

func appendString(b []byte, tag byte, s string) []byte {
	b = binary.AppendUvarint(append(b, tag), uint64(len(s)))
	return append(b, s...)
}
