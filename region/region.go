// Package region reads and writes Minecraft region files (.mca/.mcr): fixed
// 32x32 containers of independently compressed NBT chunks addressed by a
// sector table in the first 8 KiB of the file.
package region

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/astei/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	// Width is the side length of a region in chunks.
	Width = 32

	sectorSize = 4096
	maxEntries = Width * Width
	headerSize = 2 * sectorSize
)

var ErrCorruptRegion = errors.New("region: corrupt region file")
var ErrCorruptChunk = errors.New("region: corrupt chunk entry")
var ErrUnsupportedCompression = errors.New("region: unsupported compression scheme")
var ErrExternalChunk = errors.New("region: external chunk requires a region opened from its file path")

// Compression identifies the per-chunk compression scheme byte.
type Compression byte

const (
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
	CompressionNone Compression = 3

	// externalFlag marks a chunk whose payload lives in a sibling
	// c.<x>.<z>.mcc file instead of the region's sectors.
	externalFlag = 0x80
)

// Region provides access to the chunks of one region file. The two header
// blocks are read eagerly; chunk payloads are read and decoded only on
// request. A Region is not safe for concurrent use.
type Region struct {
	source io.ReadSeeker
	path   string

	// rx, rz are the region's own coordinates, known only when the region
	// was opened from a conventionally named file. Needed to resolve
	// external chunk files.
	rx, rz    int
	posKnown  bool
	locations [maxEntries]uint32
	mtimes    [maxEntries]uint32
}

// Open opens the region file at path. The file is opened read-write when
// permitted so that WriteChunk works, falling back to read-only.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, os.ErrPermission) {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	region, err := NewRegion(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	region.path = path
	if x, z, ok := ParseFileName(filepath.Base(path)); ok {
		region.rx, region.rz = x, z
		region.posKnown = true
	}
	return region, nil
}

// NewRegion creates a Region over source, which must contain a complete
// region file. Ownership of source is transferred to the region.
func NewRegion(source io.ReadSeeker) (*Region, error) {
	region := &Region{source: source}
	if err := region.readHeader(); err != nil {
		return nil, err
	}
	return region, nil
}

func (r *Region) readHeader() error {
	if _, err := r.source.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r.source, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: shorter than %d bytes", ErrCorruptRegion, headerSize)
		}
		return err
	}

	in := bytes.NewReader(header)
	if err := binary.Read(in, binary.BigEndian, r.locations[:]); err != nil {
		return err
	}
	return binary.Read(in, binary.BigEndian, r.mtimes[:])
}

// slot maps chunk coordinates to a header index. Coordinates are reduced
// modulo 32, so both in-region and global chunk coordinates work.
func slot(x, z int) int {
	return (z&(Width-1))*Width + (x & (Width - 1))
}

// Contains reports whether a chunk is stored at (x, z).
func (r *Region) Contains(x, z int) bool {
	return r.locations[slot(x, z)] != 0
}

// Timestamp returns the last-modification time recorded for the chunk at
// (x, z), or the zero time for an empty slot.
func (r *Region) Timestamp(x, z int) time.Time {
	seconds := r.mtimes[slot(x, z)]
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(int64(seconds), 0)
}

// Chunk reads and decodes the chunk at (x, z). Coordinates are reduced
// modulo 32. An empty slot yields (nil, nil): a missing chunk is an expected
// state, not a failure.
func (r *Region) Chunk(x, z int) (*Chunk, error) {
	idx := slot(x, z)
	location := r.locations[idx]
	if location == 0 {
		return nil, nil
	}

	offset := int64(location>>8) * sectorSize
	sectors := int64(location & 0xff)

	if _, err := r.source.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to chunk: %w", err)
	}

	var payloadInfo struct {
		Length      int32
		Compression Compression
	}
	if err := binary.Read(r.source, binary.BigEndian, &payloadInfo); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	if payloadInfo.Length <= 0 || int64(payloadInfo.Length)+4 > sectors*sectorSize {
		return nil, fmt.Errorf("%w: length %d outside %d allocated sectors",
			ErrCorruptChunk, payloadInfo.Length, sectors)
	}

	data := make([]byte, payloadInfo.Length-1)
	if _, err := io.ReadFull(r.source, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}

	scheme := payloadInfo.Compression
	if scheme&externalFlag != 0 {
		external, err := r.readExternal(idx)
		if err != nil {
			return nil, err
		}
		data = external
		scheme &^= externalFlag
	}

	root, err := decodeChunkPayload(data, scheme)
	if err != nil {
		return nil, err
	}
	return &Chunk{x: x & (Width - 1), z: z & (Width - 1), root: root}, nil
}

func decodeChunkPayload(data []byte, scheme Compression) (*nbt.Compound, error) {
	var payload io.Reader = bytes.NewReader(data)
	switch scheme {
	case CompressionGzip:
		inflated, err := gzip.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		defer inflated.Close()
		payload = inflated
	case CompressionZlib:
		inflated, err := zlib.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		defer inflated.Close()
		payload = inflated
	case CompressionNone:
		// Raw NBT bytes, nothing to inflate.
	default:
		return nil, fmt.Errorf("%w: scheme %d", ErrUnsupportedCompression, scheme)
	}

	tag, _, err := nbt.NewDecoder(payload).Decode()
	if err != nil {
		return nil, err
	}
	root, ok := tag.(*nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("%w: root tag is %v, not Compound", ErrCorruptChunk, tag.Type())
	}
	return root, nil
}

// readExternal loads the payload of an oversized chunk from its sibling
// c.<x>.<z>.mcc file. The chunk coordinates in the file name are global, so
// the region's own position must be known.
func (r *Region) readExternal(idx int) ([]byte, error) {
	if !r.posKnown {
		return nil, ErrExternalChunk
	}
	cx := r.rx*Width + idx%Width
	cz := r.rz*Width + idx/Width
	name := fmt.Sprintf("c.%d.%d.mcc", cx, cz)
	return os.ReadFile(filepath.Join(filepath.Dir(r.path), name))
}

// Chunks returns a restartable iterator over every non-empty chunk in slot
// order (z-major, then x). Chunks are decoded one per step; a corrupt chunk
// is yielded as an error without stopping the remaining slots.
func (r *Region) Chunks() iter.Seq2[*Chunk, error] {
	return func(yield func(*Chunk, error) bool) {
		for z := 0; z < Width; z++ {
			for x := 0; x < Width; x++ {
				if r.locations[slot(x, z)] == 0 {
					continue
				}
				if !yield(r.Chunk(x, z)) {
					return
				}
			}
		}
	}
}

func (r *Region) Close() error {
	if closer, ok := r.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
