package nbt

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Read reads one named root tag from r. If the stream starts with the gzip
// magic it is inflated transparently; otherwise it is parsed as raw NBT.
func Read(r io.Reader) (Tag, string, error) {
	buffered := bufio.NewReader(r)
	magic, err := buffered.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		inflated, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, "", err
		}
		defer inflated.Close()
		return NewDecoder(inflated).Decode()
	}
	// Peek errors surface as decode errors on the short stream.
	return NewDecoder(buffered).Decode()
}

// Write writes tag to w as a gzip-compressed named root tag, the framing
// used by standalone .dat save files.
func Write(w io.Writer, tag Tag, name string) error {
	compressed := gzip.NewWriter(w)
	if err := NewEncoder(compressed).Encode(tag, name); err != nil {
		compressed.Close()
		return err
	}
	return compressed.Close()
}

// ReadFile reads a root tag from a .dat file, compressed or not.
func ReadFile(path string) (Tag, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes a gzip-compressed root tag to path.
func WriteFile(path string, tag Tag, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, tag, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
