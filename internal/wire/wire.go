// Package wire is the binary framing used to persist primitives and chains.
//
// A stream is a sequence of records. Each record is a one-byte kind, a
// little-endian uint32 payload length and the payload. A payload is a
// sequence of fields, each a one-byte id, a uint32 length and the value,
// normally little-endian IEEE-754 doubles. Readers skip records and fields
// they do not know by their length, so newer writers stay readable.
package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/path"
)

// Record kinds.
const (
	KindLine byte = 1
	KindArc  byte = 2
	KindRing byte = 3
)

// Arc field ids.
const (
	FieldArcPos    byte = 1 // x, y
	FieldArcRadius byte = 2
	FieldArcStart  byte = 3 // degrees
	FieldArcSweep  byte = 4 // degrees
)

// Line field ids.
const (
	FieldLinePoints byte = 1 // x0, y0, x1, y1
)

// Ring header field ids.
const (
	FieldRingContext byte = 1 // origin x, y, rotation, side, tool, eval, z0, z1
	FieldRingClosed  byte = 2 // 0 or 1
	FieldRingCount   byte = 3 // number of primitive records that follow
	FieldRingID      byte = 4 // raw bytes
)

// maxPayload bounds a single record so a corrupt length cannot exhaust memory.
const maxPayload = 1 << 24

// ErrMalformed reports a record whose fields do not decode.
var ErrMalformed = errors.New("wire: malformed record")

// Encoder writes records to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf bytes.Buffer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) field(id byte, vals ...float64) {
	e.buf.WriteByte(id)
	_ = binary.Write(&e.buf, binary.LittleEndian, uint32(8*len(vals)))
	_ = binary.Write(&e.buf, binary.LittleEndian, vals)
}

func (e *Encoder) bytesField(id byte, b []byte) {
	e.buf.WriteByte(id)
	_ = binary.Write(&e.buf, binary.LittleEndian, uint32(len(b)))
	e.buf.Write(b)
}

func (e *Encoder) flush(kind byte) error {
	defer e.buf.Reset()
	hdr := make([]byte, 5)
	hdr[0] = kind
	binary.LittleEndian.PutUint32(hdr[1:], uint32(e.buf.Len()))
	if _, err := e.w.Write(hdr); err != nil {
		return err
	}
	_, err := e.w.Write(e.buf.Bytes())
	return err
}

// WritePrimitive writes one Line or Arc record.
func (e *Encoder) WritePrimitive(p geom.Primitive) error {
	switch p := p.(type) {
	case *geom.Line:
		e.field(FieldLinePoints, p.P0.X, p.P0.Y, p.P1.X, p.P1.Y)
		return e.flush(KindLine)
	case *geom.Arc:
		e.field(FieldArcPos, p.Pos.X, p.Pos.Y)
		e.field(FieldArcRadius, p.Radius)
		e.field(FieldArcStart, p.StartAngle)
		e.field(FieldArcSweep, p.Sweep)
		return e.flush(KindArc)
	}
	return fmt.Errorf("wire: unsupported primitive %T", p)
}

// WriteRing writes a ring header followed by its primitives.
func (e *Encoder) WriteRing(r *path.Ring) error {
	c := r.Context
	closed := 0.0
	if r.Closed {
		closed = 1
	}
	e.field(FieldRingContext, c.Origin.X, c.Origin.Y, c.Rotation, c.Side, c.Tool, c.Eval, c.Z[0], c.Z[1])
	e.field(FieldRingClosed, closed)
	e.field(FieldRingCount, float64(r.Len()))
	e.bytesField(FieldRingID, []byte(r.ID))
	if err := e.flush(KindRing); err != nil {
		return fmt.Errorf("ring %s: %w", r.ID, err)
	}
	for i, p := range r.Items {
		if err := e.WritePrimitive(p); err != nil {
			return fmt.Errorf("ring %s item %d: %w", r.ID, i, err)
		}
	}
	return nil
}

// Decoder reads records from an io.Reader.
type Decoder struct {
	r *bufio.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// next reads one raw record. A clean end of stream returns io.EOF.
func (d *Decoder) next() (byte, []byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(d.r, hdr[:1]); err != nil {
		return 0, nil, err
	}
	if _, err := io.ReadFull(d.r, hdr[1:]); err != nil {
		return 0, nil, io.ErrUnexpectedEOF
	}
	n := binary.LittleEndian.Uint32(hdr[1:])
	if n > maxPayload {
		return 0, nil, fmt.Errorf("%w: payload of %d bytes", ErrMalformed, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return hdr[0], payload, nil
}

// fields splits a payload into its fields, last occurrence winning.
func fields(payload []byte) (map[byte][]byte, error) {
	out := make(map[byte][]byte)
	for len(payload) > 0 {
		if len(payload) < 5 {
			return nil, ErrMalformed
		}
		id := payload[0]
		n := binary.LittleEndian.Uint32(payload[1:5])
		payload = payload[5:]
		if uint64(n) > uint64(len(payload)) {
			return nil, ErrMalformed
		}
		out[id] = payload[:n]
		payload = payload[n:]
	}
	return out, nil
}

// doubles decodes want doubles from a field. Longer fields are accepted and
// their extra values ignored.
func doubles(f map[byte][]byte, id byte, want int) ([]float64, error) {
	b, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %d", ErrMalformed, id)
	}
	if len(b) < 8*want {
		return nil, fmt.Errorf("%w: field %d holds %d bytes", ErrMalformed, id, len(b))
	}
	vals := make([]float64, want)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return vals, nil
}

func decodePrimitive(kind byte, payload []byte) (geom.Primitive, error) {
	f, err := fields(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLine:
		v, err := doubles(f, FieldLinePoints, 4)
		if err != nil {
			return nil, err
		}
		return geom.NewLine(v[0], v[1], v[2], v[3]), nil
	case KindArc:
		pos, err := doubles(f, FieldArcPos, 2)
		if err != nil {
			return nil, err
		}
		a := &geom.Arc{Pos: geom.Pt(pos[0], pos[1])}
		for id, dst := range map[byte]*float64{
			FieldArcRadius: &a.Radius,
			FieldArcStart:  &a.StartAngle,
			FieldArcSweep:  &a.Sweep,
		} {
			v, err := doubles(f, id, 1)
			if err != nil {
				return nil, err
			}
			*dst = v[0]
		}
		return a, nil
	}
	return nil, fmt.Errorf("%w: kind %d is not a primitive", ErrMalformed, kind)
}

// ReadPrimitive returns the next Line or Arc, skipping records of other
// kinds. It returns io.EOF at the end of the stream.
func (d *Decoder) ReadPrimitive() (geom.Primitive, error) {
	for {
		kind, payload, err := d.next()
		if err != nil {
			return nil, err
		}
		if kind != KindLine && kind != KindArc {
			continue
		}
		return decodePrimitive(kind, payload)
	}
}

// ReadRing returns the next ring, skipping anything before its header. It
// returns io.EOF when no ring header remains.
func (d *Decoder) ReadRing() (*path.Ring, error) {
	var payload []byte
	for {
		kind, p, err := d.next()
		if err != nil {
			return nil, err
		}
		if kind == KindRing {
			payload = p
			break
		}
	}

	f, err := fields(payload)
	if err != nil {
		return nil, err
	}
	c, err := doubles(f, FieldRingContext, 8)
	if err != nil {
		return nil, err
	}
	closed, err := doubles(f, FieldRingClosed, 1)
	if err != nil {
		return nil, err
	}
	count, err := doubles(f, FieldRingCount, 1)
	if err != nil {
		return nil, err
	}
	if count[0] < 0 || count[0] > maxPayload {
		return nil, fmt.Errorf("%w: ring count %v", ErrMalformed, count[0])
	}

	r := path.New(geom.Context{
		Origin:   geom.Pt(c[0], c[1]),
		Rotation: c[2],
		Side:     c[3],
		Tool:     c[4],
		Eval:     c[5],
		Z:        [2]float64{c[6], c[7]},
	})
	r.Closed = closed[0] != 0
	if id, ok := f[FieldRingID]; ok {
		r.ID = string(id)
	}

	for n := int(count[0]); r.Len() < n; {
		p, err := d.ReadPrimitive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("ring %s item %d: %w", r.ID, r.Len(), err)
		}
		r.Append(p)
	}
	return r, nil
}

// WriteRings encodes every ring to w.
func WriteRings(w io.Writer, rings []*path.Ring) error {
	e := NewEncoder(w)
	for _, r := range rings {
		if err := e.WriteRing(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadRings decodes rings until the end of the stream.
func ReadRings(r io.Reader) ([]*path.Ring, error) {
	d := NewDecoder(r)
	var rings []*path.Ring
	for {
		ring, err := d.ReadRing()
		if errors.Is(err, io.EOF) {
			return rings, nil
		}
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
	}
}
