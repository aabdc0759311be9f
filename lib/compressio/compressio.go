// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package compressio provides transparent read-side decompression for
// flowsim data files.
//
// Stored simulation results reach gigabytes and are often kept
// compressed at rest. Readers sniff the leading bytes of a stream for
// a zstd or lz4 frame magic and, when present, decompress on the fly;
// otherwise the stream passes through untouched. The flowsim wire
// formats themselves are never compressed — compression is a whole-
// file wrapper applied by storage tooling.
package compressio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Frame magics, little-endian byte order as they appear on disk.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// NewReader wraps r with a decompressor if the stream starts with a
// zstd or lz4 frame magic, and returns r (buffered) unchanged
// otherwise. The returned reader must be drained or abandoned before
// r is reused; it does not take ownership of r.
func NewReader(r io.Reader) (io.Reader, error) {
	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(4)
	if err != nil {
		// Streams shorter than any magic cannot be compressed;
		// hand them through and let the caller's parser report
		// the truncation in its own terms.
		return buffered, nil
	}

	switch {
	case bytes.Equal(head, zstdMagic):
		decoder, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd reader: %w", err)
		}
		return decoder.IOReadCloser(), nil
	case bytes.Equal(head, lz4Magic):
		return lz4.NewReader(buffered), nil
	default:
		return buffered, nil
	}
}

// Open opens the file at path for reading with transparent
// decompression. The caller owns the returned closer.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &readCloser{Reader: reader, closer: file}, nil
}

// readCloser pairs a (possibly decompressing) reader with the
// underlying file handle.
type readCloser struct {
	io.Reader
	closer io.Closer
}

func (rc *readCloser) Close() error {
	if decoder, ok := rc.Reader.(io.Closer); ok {
		decoder.Close()
	}
	return rc.closer.Close()
}
