package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/emove/connector/codec"
)

var (
	// ErrUnrepresentable is returned when a character does not fit in a unit.
	ErrUnrepresentable = errors.New("character can not be represented in the codec unit")
	// ErrMalformedBuffer is returned when a buffer is not a whole number of
	// units or holds a 16-bit unit that is no character on its own.
	ErrMalformedBuffer = errors.New("malformed payload buffer")
)

// Unit widths in bytes.
const (
	Unit8  = 1
	Unit16 = 2
)

// Option configures a unit codec.
type Option func(c *unitCodec)

// WithByteOrder sets the byte order of 16-bit units, big endian by default.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *unitCodec) {
		if order != nil {
			c.order = order
		}
	}
}

// NewUnit16Codec returns a codec writing one 16-bit unit per character.
// It covers U+0000 to U+FFFF.
func NewUnit16Codec(op ...Option) codec.PayloadCodec {
	c := &unitCodec{width: Unit16, max: 0xFFFF, order: binary.BigEndian}
	for _, o := range op {
		o(c)
	}
	return c
}

// NewUnit8Codec returns a codec writing one byte per character.
// It covers U+0000 to U+00FF.
func NewUnit8Codec() codec.PayloadCodec {
	return &unitCodec{width: Unit8, max: 0xFF}
}

// New returns the unit codec for width, which is given in bits (8 or 16).
func New(bits int, op ...Option) (codec.PayloadCodec, error) {
	switch bits {
	case 8:
		return NewUnit8Codec(), nil
	case 16:
		return NewUnit16Codec(op...), nil
	default:
		return nil, fmt.Errorf("unsupported unit width %d, want 8 or 16", bits)
	}
}

var _ codec.PayloadCodec = (*unitCodec)(nil)

type unitCodec struct {
	width int
	max   rune
	order binary.ByteOrder
}

func (c *unitCodec) Name() string {
	if c.width == Unit8 {
		return "unit8-payload-codec"
	}
	return "unit16-payload-codec"
}

func (c *unitCodec) UnitWidth() int {
	return c.width
}

func (c *unitCodec) Encode(text string) ([]byte, error) {
	buf := make([]byte, 0, utf8.RuneCountInString(text)*c.width)
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size <= 1 {
				return nil, fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrUnrepresentable, i)
			}
		}
		if r > c.max {
			return nil, fmt.Errorf("%w: %U at byte %d", ErrUnrepresentable, r, i)
		}
		if c.width == Unit8 {
			buf = append(buf, byte(r))
			continue
		}
		var unit [Unit16]byte
		c.order.PutUint16(unit[:], uint16(r))
		buf = append(buf, unit[:]...)
	}
	return buf, nil
}

func (c *unitCodec) Decode(buf []byte) (string, error) {
	if len(buf)%c.width != 0 {
		return "", fmt.Errorf("%w: %d bytes is not a multiple of unit width %d", ErrMalformedBuffer, len(buf), c.width)
	}

	var sb strings.Builder
	sb.Grow(len(buf))
	for i := 0; i < len(buf); i += c.width {
		if c.width == Unit8 {
			sb.WriteRune(rune(buf[i]))
			continue
		}
		u := rune(c.order.Uint16(buf[i : i+Unit16]))
		if u >= 0xD800 && u <= 0xDFFF {
			return "", fmt.Errorf("%w: surrogate unit %#04x at byte %d", ErrMalformedBuffer, u, i)
		}
		sb.WriteRune(u)
	}
	return sb.String(), nil
}
