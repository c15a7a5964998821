// Package mmap provides read-only memory-mapped file access.
//
// Local dataset inputs are mapped and advised for sequential access so the
// decompressor reads straight from the page cache:
//
//	m, err := mmap.Open("title.principals.tsv.gz")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	r := bytes.NewReader(m.Bytes())
//
// On platforms without mmap(2) Open returns ErrUnsupported and callers fall
// back to regular file reads.
package mmap
