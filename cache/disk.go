package cache

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arrowbench/banditbench/types"
)

// diskKeyAllowed is the allowed charset for DiskCacher keys: letters,
// digits, spaces, dots, underscores. Anything else fails with a
// CacheError(Kind=CacheErrorKey) rather than silently mangling the
// filename.
func diskKeyAllowed(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '.', r == '_':
		return true
	default:
		return false
	}
}

func validateDiskKey(key string) error {
	for _, r := range key {
		if !diskKeyAllowed(r) {
			return &types.CacheError{
				Kind: types.CacheErrorKey,
				Key:  key,
				Err:  fmt.Errorf("key contains character %q not in [A-Za-z0-9 ._]", r),
			}
		}
	}
	return nil
}

// DiskCacher caches gzip-compressed values under a directory, one file per
// key. If the directory is unset, the cacher degrades to Null semantics.
type DiskCacher struct {
	dir string
}

var _ Cacher = (*DiskCacher)(nil)

// NewDiskCacher constructs a DiskCacher rooted at dir, creating it if
// necessary. An empty dir degrades this cacher to Null semantics.
func NewDiskCacher(dir string) (*DiskCacher, error) {
	if dir == "" {
		return &DiskCacher{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &DiskCacher{dir: dir}, nil
}

func (c *DiskCacher) path(key string) (string, error) {
	if err := validateDiskKey(key); err != nil {
		return "", err
	}
	return filepath.Join(c.dir, key+".gz"), nil
}

func (c *DiskCacher) Contains(key string) bool {
	if c.dir == "" {
		return false
	}
	p, err := c.path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

func (c *DiskCacher) Get(key string) ([][]byte, error) {
	if c.dir == "" {
		return nil, types.ErrCacheMiss
	}
	p, err := c.path(key)
	if err != nil {
		return nil, err
	}
	if !c.Contains(key) {
		return nil, types.ErrCacheMiss
	}

	f, err := os.Open(p)
	if err != nil {
		_ = c.Remove(key)
		return nil, &types.CacheError{Kind: types.CacheErrorRead, Key: key, Err: err}
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = c.Remove(key)
		return nil, &types.CacheError{Kind: types.CacheErrorRead, Key: key, Err: err}
	}
	defer gz.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r\n")
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, cp)
	}
	if err := scanner.Err(); err != nil {
		_ = c.Remove(key)
		return nil, &types.CacheError{Kind: types.CacheErrorRead, Key: key, Err: err}
	}
	return lines, nil
}

func (c *DiskCacher) Put(key string, value [][]byte) error {
	if c.dir == "" {
		return nil
	}
	if c.Contains(key) {
		return nil
	}
	p, err := c.path(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &types.CacheError{Kind: types.CacheErrorWrite, Key: key, Err: err}
	}

	gz, err := gzip.NewWriterLevel(f, gzip.DefaultCompression)
	if err != nil {
		f.Close()
		os.Remove(p)
		return &types.CacheError{Kind: types.CacheErrorWrite, Key: key, Err: err}
	}

	writeErr := func() error {
		for _, line := range value {
			trimmed := bytes.TrimRight(line, "\r\n")
			if _, err := gz.Write(trimmed); err != nil {
				return err
			}
			if _, err := gz.Write([]byte("\r\n")); err != nil {
				return err
			}
		}
		return nil
	}()

	closeErr := gz.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	syncErr := f.Sync()
	closeFileErr := f.Close()
	if writeErr == nil {
		writeErr = syncErr
	}
	if writeErr == nil {
		writeErr = closeFileErr
	}

	if writeErr != nil {
		os.Remove(p)
		return &types.CacheError{Kind: types.CacheErrorWrite, Key: key, Err: writeErr}
	}
	return nil
}

func (c *DiskCacher) Remove(key string) error {
	if c.dir == "" {
		return nil
	}
	p, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return &types.CacheError{Kind: types.CacheErrorWrite, Key: key, Err: err}
	}
	return nil
}

func (c *DiskCacher) GetOrPut(key string, getter func() ([][]byte, error)) ([][]byte, error) {
	if c.dir == "" {
		return getter()
	}
	return defaultGetOrPut(c, key, getter)
}
