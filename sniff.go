package tjdecode

import (
	"io"

	"github.com/absfs/absfs"
)

// Sniff reads the first MagicSize bytes from r and reports the variant.
// Short reads and read errors yield VariantUnknown.
func Sniff(r io.Reader) Variant {
	var magic [MagicSize]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return VariantUnknown
	}
	return VariantOf(magic[:])
}

// Classify opens name on fsys and sniffs its magic. Directories, missing
// files and unreadable files all yield VariantUnknown.
func Classify(fsys absfs.FileSystem, name string) Variant {
	if fsys == nil || name == "" {
		return VariantUnknown
	}
	f, err := fsys.Open(name)
	if err != nil {
		return VariantUnknown
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return VariantUnknown
	}
	return Sniff(f)
}
