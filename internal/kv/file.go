// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
)

// File is a Backend persisting all keys as a single JSON document on
// disk. Writes go through a temp file and rename so a crashed write
// never leaves a truncated document behind.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a file backend at path, creating parent directories
// as needed. The file itself is created on first Put.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, oops.In("kv").
			Code("STORAGE_WRITE_FAILED").
			With("path", path).
			Wrap(err)
	}
	return &File{path: path}, nil
}

// Get implements Backend.
func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	raw, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

// Put implements Backend.
func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)
	return f.write(doc)
}

// Delete implements Backend.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return f.write(doc)
}

// Close implements Backend.
func (f *File) Close() error { return nil }

// read loads the on-disk document. A missing file is an empty store.
func (f *File) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, oops.In("kv").
			Code("STORAGE_READ_FAILED").
			With("path", f.path).
			Wrap(err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.In("kv").
			Code("STORAGE_READ_FAILED").
			With("path", f.path).
			Wrap(err)
	}
	return doc, nil
}

// write atomically replaces the on-disk document.
func (f *File) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return oops.In("kv").Code("STORAGE_WRITE_FAILED").Wrap(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kv-*")
	if err != nil {
		return oops.In("kv").
			Code("STORAGE_WRITE_FAILED").
			With("path", f.path).
			Wrap(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return oops.In("kv").Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return oops.In("kv").Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return oops.In("kv").Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return oops.In("kv").Code("STORAGE_WRITE_FAILED").With("path", f.path).Wrap(err)
	}
	return nil
}
