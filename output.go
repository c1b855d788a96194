package tjdecode

import (
	"path"
	"strings"
)

// DefaultOutputInfix is inserted between the stem and the extension of the
// source name to form the default output name
const DefaultOutputInfix = ".dec"

// extension returns the final extension of the base name, dot included.
// Dotfiles without another dot and names ending in a dot have none.
func extension(name string) string {
	base := path.Base(cleanSlash(name))
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}
	return base[i:]
}

// DefaultOutputPath returns the sibling path a decoded file is written to:
// "foo.bar" becomes "foo.dec.bar" and "foo" becomes "foo.dec".
func DefaultOutputPath(name, infix string) string {
	if infix == "" {
		infix = DefaultOutputInfix
	}
	name = cleanSlash(name)
	ext := extension(name)
	return name[:len(name)-len(ext)] + infix + ext
}

// MirrorOutputPath maps a file under root to the same relative location
// under outDir, with the output infix applied to its name
func MirrorOutputPath(root, outDir, name, infix string) string {
	rel := relativeTo(root, name)
	return path.Join(cleanSlash(outDir), DefaultOutputPath(rel, infix))
}

// relativeTo returns name relative to root using slash paths. Names outside
// root are returned unchanged.
func relativeTo(root, name string) string {
	root, name = cleanSlash(root), cleanSlash(name)
	if root == "." {
		return strings.TrimPrefix(name, "/")
	}
	if name == root {
		return "."
	}
	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if rel, ok := strings.CutPrefix(name, prefix); ok {
		return rel
	}
	return name
}

// cleanSlash cleans a slash-separated path
func cleanSlash(p string) string {
	return path.Clean(p)
}
