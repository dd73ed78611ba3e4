package payload

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit16Codec_Encode(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		order   binary.ByteOrder
		want    []byte
		wantErr error
	}{
		{name: "empty", text: "", want: []byte{}},
		{name: "ascii", text: "hi", want: []byte{0x00, 'h', 0x00, 'i'}},
		{name: "little endian", text: "hi", order: binary.LittleEndian, want: []byte{'h', 0x00, 'i', 0x00}},
		{name: "latin1", text: "é", want: []byte{0x00, 0xE9}},
		{name: "bmp", text: "€", want: []byte{0x20, 0xAC}},
		{name: "replacement char", text: "�", want: []byte{0xFF, 0xFD}},
		{name: "astral", text: "😀", wantErr: ErrUnrepresentable},
		{name: "invalid utf8", text: "a\xffb", wantErr: ErrUnrepresentable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewUnit16Codec(WithByteOrder(tt.order))
			got, err := c.Encode(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnit8Codec_Encode(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []byte
		wantErr error
	}{
		{name: "ascii", text: "hi", want: []byte{'h', 'i'}},
		{name: "latin1", text: "ÿé", want: []byte{0xFF, 0xE9}},
		{name: "out of range", text: "€", wantErr: ErrUnrepresentable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewUnit8Codec().Encode(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := NewUnit16Codec().Decode([]byte{0x00, 'h', 0x00})
	assert.ErrorIs(t, err, ErrMalformedBuffer)

	for _, buf := range [][]byte{{0xD8, 0x3D}, {0x00, 'a', 0xDF, 0xFF}, {0xDC, 0x00, 0x00, 'b'}} {
		_, err = NewUnit16Codec().Decode(buf)
		assert.ErrorIs(t, err, ErrMalformedBuffer, "% x", buf)
	}
	_, err = NewUnit16Codec(WithByteOrder(binary.LittleEndian)).Decode([]byte{0x00, 0xD8})
	assert.ErrorIs(t, err, ErrMalformedBuffer)

	got, err := NewUnit16Codec().Decode([]byte{0xD7, 0xFF, 0xE0, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "\uD7FF\uE000", got)

	got, err = NewUnit8Codec().Decode([]byte{'o', 'k', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "oké", got)
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"", "hi", "hello world", "naïve café", "Ωmega ≠ αlpha", "tab\tnewline\n\x00nul"}

	u16 := []Option{WithByteOrder(binary.BigEndian), WithByteOrder(binary.LittleEndian)}
	for _, op := range u16 {
		c := NewUnit16Codec(op)
		for _, in := range inputs {
			buf, err := c.Encode(in)
			require.NoError(t, err)
			assert.Len(t, buf, len([]rune(in))*Unit16)
			out, err := c.Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		}
	}

	c8 := NewUnit8Codec()
	for _, in := range []string{"", "hi", "naïve café", "\x00\x7f"} {
		buf, err := c8.Encode(in)
		require.NoError(t, err)
		out, err := c8.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestRoundTrip_AllBMP(t *testing.T) {
	c := NewUnit16Codec()
	for r := rune(0); r <= 0xFFFF; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			// surrogates are not valid in a Go string
			continue
		}
		in := string(r)
		buf, err := c.Encode(in)
		require.NoError(t, err)
		out, err := c.Decode(buf)
		require.NoError(t, err)
		if out != in {
			t.Fatalf("round trip of %U: got %q", r, out)
		}
	}
}

func TestNew(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)
	assert.Equal(t, Unit8, c.UnitWidth())
	assert.Equal(t, "unit8-payload-codec", c.Name())

	c, err = New(16, WithByteOrder(binary.LittleEndian))
	require.NoError(t, err)
	assert.Equal(t, Unit16, c.UnitWidth())
	assert.Equal(t, "unit16-payload-codec", c.Name())

	_, err = New(32)
	assert.Error(t, err)
}

func BenchmarkUnit16Encode(b *testing.B) {
	c := NewUnit16Codec()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = c.Encode("hello world, hello connector")
	}
}

func BenchmarkUnit16Decode(b *testing.B) {
	c := NewUnit16Codec()
	buf, _ := c.Encode("hello world, hello connector")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = c.Decode(buf)
	}
}
