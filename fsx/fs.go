// Package fsx is the read-only filesystem capability the resolution
// pipeline is built against. Production code backs it with an afero.Fs
// (usually afero.NewOsFs()); tests back it with an in-memory map that can
// also describe symlinks, which afero's own MemMapFs cannot do.
package fsx

import (
	"errors"
	"io/fs"
	"path"

	"github.com/spf13/afero"
)

// EntryKind classifies a filesystem entry the way the pipeline cares
// about: plain file or directory. Anything else (device, socket, ...) is
// treated as absent.
type EntryKind uint8

const (
	NoEntry EntryKind = iota
	FileEntry
	DirEntry
)

// Info is the result of a Stat probe.
type Info struct {
	Kind      EntryKind
	IsSymlink bool
}

// FS is the external collaborator named in the specification's §6.1: a
// read-only set of probes the pipeline and the descriptor reader issue
// against the real world. Every method must be safe for concurrent use.
type FS interface {
	// Stat reports what kind of entry (if any) is at path. A missing path is
	// not an error: it is reported as Info{Kind: NoEntry}.
	Stat(path string) (Info, error)

	// Readdir lists the base names of a directory's immediate children.
	Readdir(path string) ([]string, error)

	// Readlink reports the immediate target of a symbolic link.
	Readlink(path string) (string, error)

	// ReadFile reads the full contents of a file. Used only for descriptor
	// files, which are expected to be small.
	ReadFile(path string) ([]byte, error)

	Join(parts ...string) string
	Dir(path string) string
	Base(path string) string
	IsAbs(p string) bool
}

type aferoFS struct {
	fs afero.Fs
}

// NewOS returns an FS backed by the real operating system filesystem.
func NewOS() FS {
	return aferoFS{fs: afero.NewOsFs()}
}

// NewMem returns an FS backed by an in-memory afero filesystem. It cannot
// represent symlinks; use NewMockWithSymlinks for tests that need them.
func NewMem() FS {
	return aferoFS{fs: afero.NewMemMapFs()}
}

// Wrap adapts an arbitrary afero.Fs to the FS capability.
func Wrap(a afero.Fs) FS {
	return aferoFS{fs: a}
}

func (a aferoFS) Stat(p string) (Info, error) {
	var info fs.FileInfo
	var err error
	isSymlink := false

	if lstater, ok := a.fs.(afero.Lstater); ok {
		var wasLstat bool
		info, wasLstat, err = lstater.LstatIfPossible(p)
		if err == nil && wasLstat && info.Mode()&fs.ModeSymlink != 0 {
			isSymlink = true
			// Follow the link once more to classify the target, matching the
			// "stat" (not "lstat") semantics the pipeline needs for everything
			// except symlink canonicalization itself.
			if followed, followErr := a.fs.Stat(p); followErr == nil {
				info = followed
			}
		}
	} else {
		info, err = a.fs.Stat(p)
	}

	if err != nil {
		if isNotExist(err) {
			return Info{Kind: NoEntry}, nil
		}
		return Info{}, err
	}

	switch {
	case info.IsDir():
		return Info{Kind: DirEntry, IsSymlink: isSymlink}, nil
	case info.Mode().IsRegular():
		return Info{Kind: FileEntry, IsSymlink: isSymlink}, nil
	}
	return Info{Kind: NoEntry}, nil
}

func (a aferoFS) Readdir(p string) ([]string, error) {
	f, err := a.fs.Open(p)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (a aferoFS) Readlink(p string) (string, error) {
	if linker, ok := a.fs.(afero.LinkReader); ok {
		return linker.ReadlinkIfPossible(p)
	}
	return "", fs.ErrInvalid
}

func (a aferoFS) ReadFile(p string) ([]byte, error) {
	return afero.ReadFile(a.fs, p)
}

func (aferoFS) Join(parts ...string) string { return path.Join(parts...) }
func (aferoFS) Dir(p string) string         { return path.Dir(p) }
func (aferoFS) Base(p string) string        { return path.Base(p) }
func (aferoFS) IsAbs(p string) bool         { return path.IsAbs(p) }

func isNotExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrNotExist)
}
