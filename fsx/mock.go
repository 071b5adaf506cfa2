package fsx

import (
	"io/fs"
	"path"
	"strings"
)

// mockFS is a deterministic in-memory filesystem for tests that need
// symlinks, which afero's MemMapFs cannot represent. Grounded on esbuild's
// own internal/fs.MockFS fixture helper.
type mockFS struct {
	files    map[string]string
	dirs     map[string]bool
	symlinks map[string]string
}

// NewMock builds a mock FS from a map of absolute file path to contents.
// Parent directories are synthesized automatically.
func NewMock(files map[string]string) FS {
	return NewMockWithSymlinks(files, nil)
}

// NewMockWithSymlinks is like NewMock but also takes a map of symlink path
// to link target (absolute or relative to the symlink's directory).
func NewMockWithSymlinks(files map[string]string, symlinks map[string]string) FS {
	m := &mockFS{
		files:    map[string]string{},
		dirs:     map[string]bool{"/": true},
		symlinks: map[string]string{},
	}
	for k, v := range files {
		m.files[k] = v
		m.addParents(k)
	}
	for k, v := range symlinks {
		m.symlinks[k] = v
		m.addParents(k)
	}
	return m
}

func (m *mockFS) addParents(p string) {
	for {
		dir := path.Dir(p)
		if dir == p {
			break
		}
		m.dirs[dir] = true
		p = dir
	}
}

// fullyResolve follows every symlinked path segment, including the final
// one, the way a real kernel's open()/stat() syscalls transparently do.
// Grounded on esbuild's fs.FS.EvalSymlinks contract, which the OS-backed FS
// gets for free from the kernel and this mock must replicate explicitly.
func (m *mockFS) fullyResolve(p string) string {
	p = path.Clean(p)
	if !path.IsAbs(p) {
		// The mock has no notion of a current working directory to resolve
		// a relative path against (every fixture path is absolute); returning
		// p unchanged here, rather than recursing into path.Split's "" base
		// case, is what turns a stray relative candidate into a harmless
		// not-found instead of infinite recursion.
		return p
	}
	if p == "/" {
		return "/"
	}
	dir, base := path.Split(p)
	candidate := path.Join(m.fullyResolve(path.Clean(dir)), base)
	for iter := 0; iter < 40; iter++ {
		target, ok := m.symlinks[candidate]
		if !ok {
			break
		}
		if path.IsAbs(target) {
			candidate = path.Clean(target)
		} else {
			candidate = path.Clean(path.Join(path.Dir(candidate), target))
		}
	}
	return candidate
}

// resolveDir is like fullyResolve but leaves the final path segment
// untouched, so callers that need to know whether the requested path
// itself is a symlink (Stat's IsSymlink flag) can still observe that.
func (m *mockFS) resolveDir(p string) string {
	p = path.Clean(p)
	dir, base := path.Split(p)
	if dir == "" || dir == "/" {
		return p
	}
	return path.Join(m.fullyResolve(path.Clean(dir)), base)
}

func (m *mockFS) Stat(p string) (Info, error) {
	p = m.resolveDir(p)
	if target, ok := m.symlinks[p]; ok {
		resolved := target
		if !path.IsAbs(resolved) {
			resolved = path.Join(path.Dir(p), resolved)
		}
		info, err := m.Stat(resolved)
		info.IsSymlink = true
		return info, err
	}
	if _, ok := m.files[p]; ok {
		return Info{Kind: FileEntry}, nil
	}
	if m.dirs[p] {
		return Info{Kind: DirEntry}, nil
	}
	return Info{Kind: NoEntry}, nil
}

func (m *mockFS) Readdir(p string) ([]string, error) {
	p = m.fullyResolve(p)
	if !m.dirs[p] {
		return nil, nil
	}
	seen := map[string]bool{}
	var names []string
	add := func(child string) {
		if path.Dir(child) != p {
			return
		}
		base := path.Base(child)
		if !seen[base] {
			seen[base] = true
			names = append(names, base)
		}
	}
	for k := range m.files {
		add(k)
	}
	for k := range m.dirs {
		add(k)
	}
	for k := range m.symlinks {
		add(k)
	}
	return names, nil
}

func (m *mockFS) Readlink(p string) (string, error) {
	p = path.Clean(p)
	if target, ok := m.symlinks[p]; ok {
		return target, nil
	}
	return "", fs.ErrInvalid
}

func (m *mockFS) ReadFile(p string) ([]byte, error) {
	p = m.fullyResolve(p)
	if contents, ok := m.files[p]; ok {
		return []byte(contents), nil
	}
	return nil, fs.ErrNotExist
}

func (mockFS) Join(parts ...string) string { return path.Join(parts...) }
func (mockFS) Dir(p string) string         { return path.Dir(p) }
func (mockFS) Base(p string) string        { return path.Base(p) }
func (mockFS) IsAbs(p string) bool         { return strings.HasPrefix(p, "/") }
