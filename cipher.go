package tjdecode

import (
	"encoding/binary"
	"fmt"
)

const (
	// delta is the XXTEA round constant, stored as its two's complement
	// so the round sum steps up towards zero
	delta = uint32(0x61C88647)

	// sumSeed is the starting round sum before the per-length adjustment
	sumSeed = uint32(0xB54CDA56)
)

// DecryptBlock reverses the client's block cipher. data is treated as a run
// of little-endian 32-bit words (zero padded to a multiple of four) whose
// last word, once decrypted, holds the true plaintext length.
//
// Empty input decrypts to empty output. A recovered length that the encoder
// could not have produced is reported as a *CorruptionError wrapping
// ErrCorruptLength, which in practice means the key is wrong.
func DecryptBlock(data, key []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(key) != KeySize {
		return nil, NewKeyMaterialError("key", len(key))
	}

	n := (len(data) + 3) / 4
	padded := make([]byte, n*4)
	copy(padded, data)

	v := make([]uint32, n)
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(padded[i*4:])
	}
	var k [4]uint32
	for i := range k {
		k[i] = binary.LittleEndian.Uint32(key[i*4:])
	}

	if n > 1 {
		decryptWords(v, &k)
	}

	length := v[n-1]
	lo, hi := int64(4*n-7), int64(4*n-4)
	if l := int64(length); l < lo || l > hi {
		return nil, &CorruptionError{
			Length:  length,
			Words:   n,
			Message: fmt.Sprintf("recovered length %d outside [%d, %d] for %d words", length, max(lo, 0), hi, n),
			Err:     ErrCorruptLength,
		}
	}

	for i, w := range v {
		binary.LittleEndian.PutUint32(padded[i*4:], w)
	}
	return padded[:length], nil
}

// decryptWords runs the inverse mixing rounds in place. len(v) must be > 1.
func decryptWords(v []uint32, k *[4]uint32) {
	n := uint32(len(v))
	sum := sumSeed - delta*(52/n)
	y := v[0]
	for sum != 0 {
		e := sum >> 2 & 3
		var z uint32
		p := n - 1
		for ; p > 0; p-- {
			z = v[p-1]
			v[p] -= mx(sum, y, z, p, e, k)
			y = v[p]
		}
		z = v[n-1]
		v[0] -= mx(sum, y, z, p, e, k)
		y = v[0]
		sum += delta
	}
}

func mx(sum, y, z, p, e uint32, k *[4]uint32) uint32 {
	return ((z>>5 ^ y<<2) + (y>>3 ^ z<<4)) ^ ((sum ^ y) + (k[p&3^e] ^ z))
}
