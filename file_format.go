package tjdecode

import (
	"bytes"
	"fmt"
)

const (
	// MagicSize is the length of the tag that opens every container
	MagicSize = 3

	// HeaderOffset is where the 16-byte key header starts
	HeaderOffset = MagicSize

	// HeaderSize is the length of the per-file key header
	HeaderSize = 16

	// ReservedSize is the number of opaque bytes between the header and the
	// payload. Their meaning is unknown and they are carried through unused.
	ReservedSize = 4

	// MinPayloadOffset is the smallest usable payload offset: magic plus header
	MinPayloadOffset = MagicSize + HeaderSize

	// DefaultPayloadOffset is where the cipher payload begins in files
	// produced by the known client builds
	DefaultPayloadOffset = MinPayloadOffset + ReservedSize
)

// Container is a parsed container file. Payload aliases the input buffer.
type Container struct {
	Variant  Variant          // Which tag the file starts with
	Header   [HeaderSize]byte // Per-file key header
	Reserved []byte           // Bytes between the header and the payload
	Payload  []byte           // Cipher payload, possibly empty
}

// VariantOf maps a 3-byte tag to its variant. Anything else, including a
// short slice, is VariantUnknown.
func VariantOf(magic []byte) Variant {
	if len(magic) < MagicSize {
		return VariantUnknown
	}
	switch {
	case bytes.Equal(magic[:MagicSize], []byte("tj!")):
		return VariantBang
	case bytes.Equal(magic[:MagicSize], []byte("tje")):
		return VariantE
	case bytes.Equal(magic[:MagicSize], []byte("tjz")):
		return VariantZ
	default:
		return VariantUnknown
	}
}

// ParseContainer splits a whole container file into its parts. name is only
// used for error reporting. A payload offset beyond the end of data yields an
// empty payload rather than an error.
func ParseContainer(name string, data []byte, payloadOffset int) (*Container, error) {
	if err := ValidatePayloadOffset(payloadOffset); err != nil {
		return nil, err
	}

	variant := VariantOf(data)
	if variant == VariantUnknown {
		return nil, &FormatError{
			Path:    name,
			Magic:   bytes.Clone(data[:min(len(data), MagicSize)]),
			Message: "unrecognized magic",
			Err:     ErrNotAContainer,
		}
	}

	if len(data) < HeaderOffset+HeaderSize {
		return nil, &FormatError{
			Path:    name,
			Magic:   bytes.Clone(data[:MagicSize]),
			Message: fmt.Sprintf("need %d header bytes, file has %d", HeaderSize, len(data)-HeaderOffset),
			Err:     ErrTruncatedHeader,
		}
	}

	c := &Container{Variant: variant}
	copy(c.Header[:], data[HeaderOffset:HeaderOffset+HeaderSize])

	headerEnd := HeaderOffset + HeaderSize
	c.Reserved = data[headerEnd:min(len(data), payloadOffset)]
	if payloadOffset < len(data) {
		c.Payload = data[payloadOffset:]
	} else {
		c.Payload = []byte{}
	}
	return c, nil
}
