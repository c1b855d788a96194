package tjdecode

// KeySize is the length of both the base key and every derived file key
const KeySize = 16

// keyMask is ANDed into the derived key. Index 3 is not masked; the client
// leaves that byte as is and so must we.
var keyMask = [KeySize]byte{
	0xD6, 0x34, 0x9B, 0xFF, 0x40, 0xAA, 0x0D, 0x95,
	0xE2, 0x48, 0xD7, 0x23, 0x8C, 0x1E, 0x69, 0xF9,
}

// DeriveFileKey computes the 16-byte key for one file from the base key of
// the client build and the header stored in that file.
func DeriveFileKey(baseKey, header []byte) ([]byte, error) {
	if len(baseKey) != KeySize {
		return nil, NewKeyMaterialError("base_key", len(baseKey))
	}
	if len(header) != HeaderSize {
		return nil, NewKeyMaterialError("header", len(header))
	}

	key := make([]byte, KeySize)
	for i := range key {
		key[i] = (0x01 ^ baseKey[i] ^ header[i]) & keyMask[i]
	}
	return key, nil
}
