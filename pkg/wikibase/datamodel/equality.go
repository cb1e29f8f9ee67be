package datamodel

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// contentful is implemented by every type of the model. A type writes its kind followed by
// every semantic field, recursing into nested model objects, so that equality, hashing and
// the debug string are all derived from the same walk.
type contentful interface {
	writeContent(w *contentWriter)
}

// contentWriter produces an unambiguous byte encoding of a content walk together with a
// readable rendering of it.
type contentWriter struct {
	buf  bytes.Buffer
	text strings.Builder

	fieldCount []int
}

const (
	tagKind byte = iota + 1
	tagString
	tagInt
	tagUint
	tagFloat
	tagList
	tagNil
	tagEnd
)

func (w *contentWriter) begin(kind string) {
	w.buf.WriteByte(tagKind)
	w.writeBytes([]byte(kind))

	w.text.WriteString(kind)
	w.text.WriteByte('{')
	w.fieldCount = append(w.fieldCount, 0)
}

func (w *contentWriter) end() {
	w.buf.WriteByte(tagEnd)
	w.text.WriteByte('}')
	w.fieldCount = w.fieldCount[:len(w.fieldCount)-1]
}

func (w *contentWriter) name(field string) {
	if n := len(w.fieldCount); n > 0 {
		if w.fieldCount[n-1] > 0 {
			w.text.WriteString(", ")
		}
		w.fieldCount[n-1]++
	}

	if field != "" {
		w.text.WriteString(field)
		w.text.WriteByte('=')
	}
}

func (w *contentWriter) writeBytes(b []byte) {
	var lenbuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenbuf[:], uint64(len(b)))
	w.buf.Write(lenbuf[:n])
	w.buf.Write(b)
}

func (w *contentWriter) str(field, value string) {
	w.name(field)
	w.buf.WriteByte(tagString)
	w.writeBytes([]byte(value))
	w.text.WriteString(strconv.Quote(value))
}

func (w *contentWriter) integer(field string, value int64) {
	w.name(field)
	w.buf.WriteByte(tagInt)
	w.buf.Write(binary.AppendVarint(nil, value))
	w.text.WriteString(strconv.FormatInt(value, 10))
}

func (w *contentWriter) unsigned(field string, value uint64) {
	w.name(field)
	w.buf.WriteByte(tagUint)
	w.buf.Write(binary.AppendUvarint(nil, value))
	w.text.WriteString(strconv.FormatUint(value, 10))
}

// float compares by bit pattern, so NaN equals an identical NaN and 0.0 differs from -0.0
func (w *contentWriter) float(field string, value float64) {
	w.name(field)
	w.buf.WriteByte(tagFloat)
	w.buf.Write(binary.BigEndian.AppendUint64(nil, math.Float64bits(value)))
	w.text.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
}

func (w *contentWriter) nested(field string, c contentful) {
	w.name(field)
	if isNil(c) {
		w.buf.WriteByte(tagNil)
		w.text.WriteString("nil")
		return
	}
	c.writeContent(w)
}

func writeList[T contentful](w *contentWriter, field string, items []T) {
	w.name(field)
	w.buf.WriteByte(tagList)
	w.buf.Write(binary.AppendUvarint(nil, uint64(len(items))))

	w.text.WriteByte('[')
	w.fieldCount = append(w.fieldCount, 0)
	for _, item := range items {
		w.nested("", item)
	}
	w.fieldCount = w.fieldCount[:len(w.fieldCount)-1]
	w.text.WriteByte(']')
}

func isNil(c contentful) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func contentOf(c contentful) *contentWriter {
	w := &contentWriter{}
	c.writeContent(w)
	return w
}

// Equal reports whether a and b are model objects of the same kind with equal content.
// Comparisons against nil or against values that are not part of the model are false.
func Equal(a, b any) bool {
	ca, ok := a.(contentful)
	if !ok || isNil(ca) {
		return false
	}

	cb, ok := b.(contentful)
	if !ok || isNil(cb) {
		return false
	}

	return bytes.Equal(contentOf(ca).buf.Bytes(), contentOf(cb).buf.Bytes())
}

// Hash returns a content hash that is equal for all objects considered equal by Equal
func Hash(c contentful) uint64 {
	if isNil(c) {
		return 0
	}
	return xxhash.Sum64(contentOf(c).buf.Bytes())
}

// ToString renders the content walk of a model object for debugging and logging
func ToString(c contentful) string {
	if isNil(c) {
		return "nil"
	}
	return contentOf(c).text.String()
}
