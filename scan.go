package tjdecode

import (
	"iter"
	"os"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is one container found by Scan
type Match struct {
	Path    string
	Variant Variant
}

// ScanOptions filters a directory scan
type ScanOptions struct {
	// Variants selects the variants to report. Nil means DefaultVariants;
	// a pointer to an empty set reports nothing.
	Variants *VariantSet

	// Exclude holds doublestar patterns matched against the slash path
	// relative to the scan root. A matching directory is not descended into.
	// Malformed patterns never match.
	Exclude []string
}

func (o ScanOptions) variants() VariantSet {
	if o.Variants == nil {
		return DefaultVariants
	}
	return *o.Variants
}

func (o ScanOptions) excluded(rel string) bool {
	for _, pattern := range o.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Scan walks root and yields every file whose variant is enabled in opts.
// Entries are visited in name order, each file is classified exactly once,
// and symlinked directories are not followed. Directories that cannot be
// listed are skipped. The walk stops as soon as the consumer stops.
func (d *Decoder) Scan(root string, opts ScanOptions) iter.Seq[Match] {
	enabled := opts.variants()
	return func(yield func(Match) bool) {
		d.walk(root, root, opts, enabled, yield)
	}
}

// walk reports whether the consumer wants more
func (d *Decoder) walk(root, dir string, opts ScanOptions, enabled VariantSet, yield func(Match) bool) bool {
	entries, err := d.fs.ReadDir(dir)
	if err != nil {
		d.log.Debug("skipping unreadable directory", "path", dir, "err", err)
		return true
	}

	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		if len(opts.Exclude) > 0 && opts.excluded(relativeTo(root, name)) {
			continue
		}

		if entry.IsDir() {
			if !d.walk(root, name, opts, enabled, yield) {
				return false
			}
			continue
		}
		// Opening a fifo would block the walk
		if entry.Type()&(os.ModeNamedPipe|os.ModeSocket|os.ModeDevice) != 0 {
			continue
		}

		v := d.Classify(name)
		if !enabled.Has(v) {
			continue
		}
		if !yield(Match{Path: name, Variant: v}) {
			return false
		}
	}
	return true
}
