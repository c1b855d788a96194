package tjdecode

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/absfs/absfs"
)

// DecodeFS is a read-only absfs.FileSystem that presents every container
// on the decoder's filesystem as its plaintext. Files that are not
// containers and directories are passed through unchanged.
type DecodeFS struct {
	absfs.FileSystem
	dec *Decoder
}

// NewFS creates a decoded view over the decoder's filesystem
func NewFS(dec *Decoder) *DecodeFS {
	return &DecodeFS{FileSystem: dec.fs, dec: dec}
}

func readOnly(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: ErrReadOnly}
}

// Open opens a file for reading. Containers are decoded on open.
func (v *DecodeFS) Open(name string) (absfs.File, error) {
	return v.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a file. Any flag that could modify the file is refused.
func (v *DecodeFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, readOnly("open", name)
	}

	base, err := v.FileSystem.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	info, err := base.Stat()
	if err != nil {
		base.Close()
		return nil, err
	}
	if info.IsDir() || v.dec.Classify(name) == VariantUnknown {
		return base, nil
	}

	plain, err := v.dec.ReadPlaintext(name, DecodeOptions{})
	if err != nil {
		base.Close()
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return newDecodedFile(base, info, plain), nil
}

// Stat returns file information. The size of a container is the size of
// its plaintext.
func (v *DecodeFS) Stat(name string) (os.FileInfo, error) {
	info, err := v.FileSystem.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() || v.dec.Classify(name) == VariantUnknown {
		return info, nil
	}

	plain, err := v.dec.ReadPlaintext(name, DecodeOptions{})
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return &decodedFileInfo{FileInfo: info, size: int64(len(plain))}, nil
}

// ReadFile returns the decoded contents of name
func (v *DecodeFS) ReadFile(name string) ([]byte, error) {
	f, err := v.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Sub returns an io/fs view of the subtree rooted at dir, decoded
func (v *DecodeFS) Sub(dir string) (fs.FS, error) {
	return absfs.FilerToFS(v, dir)
}

// Create is not supported
func (v *DecodeFS) Create(name string) (absfs.File, error) {
	return nil, readOnly("create", name)
}

// Mkdir is not supported
func (v *DecodeFS) Mkdir(name string, perm os.FileMode) error {
	return readOnly("mkdir", name)
}

// MkdirAll is not supported
func (v *DecodeFS) MkdirAll(name string, perm os.FileMode) error {
	return readOnly("mkdir", name)
}

// Remove is not supported
func (v *DecodeFS) Remove(name string) error {
	return readOnly("remove", name)
}

// RemoveAll is not supported
func (v *DecodeFS) RemoveAll(name string) error {
	return readOnly("remove", name)
}

// Rename is not supported
func (v *DecodeFS) Rename(oldpath, newpath string) error {
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: ErrReadOnly}
}

// Chmod is not supported
func (v *DecodeFS) Chmod(name string, mode os.FileMode) error {
	return readOnly("chmod", name)
}

// Chtimes is not supported
func (v *DecodeFS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return readOnly("chtimes", name)
}

// Chown is not supported
func (v *DecodeFS) Chown(name string, uid, gid int) error {
	return readOnly("chown", name)
}

// Truncate is not supported
func (v *DecodeFS) Truncate(name string, size int64) error {
	return readOnly("truncate", name)
}

// decodedFileInfo wraps os.FileInfo to report the plaintext size
type decodedFileInfo struct {
	os.FileInfo
	size int64
}

// Size returns the decoded size of the file
func (i *decodedFileInfo) Size() int64 {
	return i.size
}

// decodedFile serves a decoded plaintext from memory. Directory and name
// methods fall through to the underlying file.
type decodedFile struct {
	absfs.File
	r    *bytes.Reader
	info os.FileInfo
}

func newDecodedFile(base absfs.File, info os.FileInfo, plaintext []byte) *decodedFile {
	return &decodedFile{
		File: base,
		r:    bytes.NewReader(plaintext),
		info: &decodedFileInfo{FileInfo: info, size: int64(len(plaintext))},
	}
}

func (f *decodedFile) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func (f *decodedFile) ReadAt(p []byte, off int64) (int, error) {
	return f.r.ReadAt(p, off)
}

func (f *decodedFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *decodedFile) Stat() (os.FileInfo, error) {
	return f.info, nil
}

func (f *decodedFile) Write(p []byte) (int, error) {
	return 0, readOnly("write", f.Name())
}

func (f *decodedFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, readOnly("write", f.Name())
}

func (f *decodedFile) WriteString(s string) (int, error) {
	return 0, readOnly("write", f.Name())
}

func (f *decodedFile) Truncate(size int64) error {
	return readOnly("truncate", f.Name())
}
