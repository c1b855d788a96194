package tjdecode

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

// Decoder decodes container files on an absfs.FileSystem. It holds only
// read-only configuration and is safe for concurrent use.
type Decoder struct {
	fs     absfs.FileSystem
	config *Config
	log    *slog.Logger
}

// DecodeOptions overrides per-call defaults
type DecodeOptions struct {
	// Output is the path to write the plaintext to. Empty selects
	// DefaultOutputPath with the configured infix.
	Output string

	// BaseKey replaces the configured KeyProvider for this call
	BaseKey []byte
}

// decoded is the result of decrypting one container in memory
type decoded struct {
	container *Container
	plaintext []byte
	keyIndex  int
}

// New creates a decoder reading from fsys
func New(fsys absfs.FileSystem, config *Config) (*Decoder, error) {
	if fsys == nil {
		return nil, ErrNilFileSystem
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := config.withDefaults()
	return &Decoder{
		fs:     fsys,
		config: cfg,
		log:    cfg.Logger,
	}, nil
}

// FileSystem returns the filesystem the decoder reads from and writes to
func (d *Decoder) FileSystem() absfs.FileSystem {
	return d.fs
}

// Config returns a copy of the effective configuration
func (d *Decoder) Config() Config {
	return *d.config
}

// Classify reports the variant of name on the decoder's filesystem
func (d *Decoder) Classify(name string) Variant {
	return Classify(d.fs, name)
}

// ReadPlaintext decrypts name and returns its plaintext without writing
// anything
func (d *Decoder) ReadPlaintext(name string, opts DecodeOptions) ([]byte, error) {
	res, err := d.decode(name, opts)
	if err != nil {
		return nil, err
	}
	return res.plaintext, nil
}

// Decode decrypts name and writes the plaintext to opts.Output, or next to
// the source under the default output name. It returns the path written.
// The output appears in full or not at all, and an existing output is kept
// if it cannot be replaced. The source is never modified.
func (d *Decoder) Decode(name string, opts DecodeOptions) (string, error) {
	_, out, err := d.decodeFile(name, opts)
	return out, err
}

// decodeFile decrypts name and commits the plaintext to its output path
func (d *Decoder) decodeFile(name string, opts DecodeOptions) (*decoded, string, error) {
	res, err := d.decode(name, opts)
	if err != nil {
		return nil, "", err
	}

	out := opts.Output
	if out == "" {
		out = DefaultOutputPath(name, d.config.OutputInfix)
	}
	if err := ValidateOutputPath(name, out); err != nil {
		return nil, "", err
	}
	if err := d.writeAtomic(out, res.plaintext); err != nil {
		return nil, "", err
	}

	d.log.Info("decoded",
		"path", name,
		"output", out,
		"variant", res.container.Variant.String(),
		"bytes", len(res.plaintext))
	return res, out, nil
}

func (d *Decoder) decode(name string, opts DecodeOptions) (*decoded, error) {
	if err := ValidateFilePath(name); err != nil {
		return nil, err
	}

	data, err := d.readAll(name)
	if err != nil {
		return nil, err
	}

	c, err := ParseContainer(name, data, d.config.PayloadOffset)
	if err != nil {
		return nil, err
	}

	keys, err := d.keysFor(opts)
	if err != nil {
		return nil, NewDecodeError("derive", name, err)
	}

	plain, idx, err := decryptWithKeys(name, c, keys)
	if err != nil {
		d.log.Debug("decrypt failed", "path", name, "variant", c.Variant.String(), "err", err)
		return nil, err
	}

	if m, ok := d.config.KeyProvider.(*MultiKeyProvider); ok && opts.BaseKey == nil && idx > 0 {
		d.log.Debug("fallback base key matched", "path", name, "key", m.Name(idx))
	}
	if c.Variant.Experimental(name) {
		d.log.Warn("decoding of this variant is experimental; verify the output",
			"path", name, "variant", c.Variant.String())
	}

	return &decoded{container: c, plaintext: plain, keyIndex: idx}, nil
}

// keysFor returns the base keys to try for one call
func (d *Decoder) keysFor(opts DecodeOptions) ([]candidateKey, error) {
	if opts.BaseKey != nil {
		if err := ValidateKeyMaterial(opts.BaseKey, "base_key"); err != nil {
			return nil, err
		}
		return []candidateKey{{index: 0, key: opts.BaseKey}}, nil
	}
	return candidateKeys(d.config.KeyProvider)
}

func (d *Decoder) readAll(name string) ([]byte, error) {
	f, err := d.fs.Open(name)
	if err != nil {
		return nil, NewIOError("read", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", name, err)
	}
	return data, nil
}

// writeAtomic writes data to a uniquely named sibling of name and renames
// it into place. The temporary file is removed on any failure.
func (d *Decoder) writeAtomic(name string, data []byte) error {
	dir := path.Dir(name)
	if dir != "." && dir != "/" {
		if err := d.fs.MkdirAll(dir, 0755); err != nil {
			return NewIOError("mkdir", dir, err)
		}
	}

	tmp := path.Join(dir, "."+path.Base(name)+".tmp-"+uuid.NewString())
	f, err := d.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return NewIOError("write", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		d.fs.Remove(tmp)
		return NewIOError("write", name, err)
	}
	if err := f.Close(); err != nil {
		d.fs.Remove(tmp)
		return NewIOError("write", name, err)
	}

	if err := d.fs.Rename(tmp, name); err != nil {
		if err := d.replace(tmp, name, err); err != nil {
			d.fs.Remove(tmp)
			return NewIOError("rename", name, err)
		}
	}
	return nil
}

// replace moves tmp onto an existing name for backends that refuse to
// rename over a file. The old file is set aside first and put back if the
// move fails.
func (d *Decoder) replace(tmp, name string, renameErr error) error {
	if _, err := d.fs.Stat(name); err != nil {
		return renameErr
	}
	backup := tmp + ".old"
	if err := d.fs.Rename(name, backup); err != nil {
		return renameErr
	}
	if err := d.fs.Rename(tmp, name); err != nil {
		if restoreErr := d.fs.Rename(backup, name); restoreErr != nil {
			d.log.Error("could not restore previous output", "path", name, "backup", backup, "err", restoreErr)
		}
		return err
	}
	d.fs.Remove(backup)
	return nil
}
