package codec

// PayloadCodec converts text payloads to and from the bytes handed to a transport.
// The same codec must be used on both the send and the receive boundary.
type PayloadCodec interface {
	// Name returns the codec name.
	Name() string

	// UnitWidth returns the number of bytes each character occupies.
	UnitWidth() int

	// Encode converts text to its wire representation.
	Encode(text string) ([]byte, error)

	// Decode converts a wire buffer back to text.
	Decode(buf []byte) (string, error)
}
