// Package tjdecode recovers plaintext game assets from the "tj!", "tje" and
// "tjz" container formats on top of the AbsFs filesystem abstraction.
//
// # Overview
//
// A container is a 3-byte magic tag, a 16-byte key header, 4 reserved
// bytes and a cipher payload. The payload key is derived per file from the
// base key of the client build and the header; the payload itself is an
// XXTEA-style block whose last word carries the true plaintext length.
//
// # Variants
//
//   - tj!: scripts and JSON data
//   - tje: PNG and JPG images
//   - tjz: experimental; decoded the same way but not verified
//
// # Basic Usage
//
//	base, err := osfs.NewFS()
//	if err != nil {
//	    panic(err)
//	}
//
//	dec, err := tjdecode.New(base, tjdecode.DefaultConfig())
//	if err != nil {
//	    panic(err)
//	}
//
//	// Writes /game/data/items.dec.json
//	out, err := dec.Decode("/game/data/items.json", tjdecode.DecodeOptions{})
//
// # Scanning and Batch Decoding
//
//	for m := range dec.Scan("/game", tjdecode.ScanOptions{}) {
//	    fmt.Println(m.Path, m.Variant)
//	}
//
//	report, err := dec.DecodeAll(ctx, "/game", tjdecode.BatchOptions{
//	    OutputDir: "/decoded",
//	})
//
// Failures in a batch are recorded per file. KindOf maps any error to an
// ErrorKind whose Hint names the likely cause: a folder that holds no
// containers, or a base key that does not match the client build.
//
// # Decoded View
//
// NewFS wraps a Decoder as a read-only absfs.FileSystem in which every
// container reads as its plaintext:
//
//	view := tjdecode.NewFS(dec)
//	data, err := view.ReadFile("/game/data/items.json")
//
// # Alternate Client Builds
//
// Different client builds use different base keys. A MultiKeyProvider tries
// each key in turn and keeps the first whose recovered length is valid.
package tjdecode
