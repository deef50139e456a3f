package stencil_test

import (
	"io"
	"io/fs"
	"sync"
	"time"
)

// templateFS is an in-memory fs.FS that counts how many times each file is
// opened, so tests can tell when a Registry went back to its Loader.
type templateFS struct {
	mu    sync.Mutex
	files map[string]string
	opens map[string]int
}

func newTemplateFS(files map[string]string) *templateFS {
	res := &templateFS{
		files: map[string]string{},
		opens: map[string]int{},
	}
	for name, contents := range files {
		res.files[name] = contents
	}
	return res
}

// Open opens the named file, counting the attempt even if the file doesn't
// exist.
func (s *templateFS) Open(name string) (fs.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens[name]++
	val, ok := s.files[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	return &memFile{
		name:     name,
		contents: []byte(val),
	}, nil
}

func (s *templateFS) set(name, contents string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = contents
}

func (s *templateFS) opened(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens[name]
}

func (s *templateFS) totalOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, n := range s.opens {
		total += n
	}
	return total
}

type memFile struct {
	name     string
	contents []byte
	offset   int
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	return f, nil
}

func (f *memFile) Read(buf []byte) (int, error) {
	if f.offset >= len(f.contents) {
		return 0, io.EOF
	}
	n := copy(buf, f.contents[f.offset:])
	f.offset += n
	return n, nil
}

func (*memFile) Close() error {
	return nil
}

func (f *memFile) Name() string {
	return f.name
}

func (f *memFile) Size() int64 {
	return int64(len(f.contents))
}

func (*memFile) Mode() fs.FileMode {
	return 0400
}

func (*memFile) ModTime() time.Time {
	return time.Time{}
}

func (*memFile) IsDir() bool {
	return false
}

func (*memFile) Sys() any {
	return nil
}
