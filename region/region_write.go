package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/astei/nbt"
	"github.com/klauspost/compress/zlib"
)

// WriteChunk encodes root, compresses it with zlib and stores it in the slot
// for (x, z), allocating a free run of sectors (or growing the file) and
// updating the location and timestamp tables. The region's source must
// support io.WriterAt, which is the case for regions opened writable via
// Open.
func (r *Region) WriteChunk(x, z int, root *nbt.Compound) error {
	out, ok := r.source.(io.WriterAt)
	if !ok {
		return fmt.Errorf("region: source is not writable")
	}
	if root == nil {
		return fmt.Errorf("region: nil chunk root")
	}

	payload, err := buildChunkPayload(root)
	if err != nil {
		return err
	}
	sectors := (len(payload) + sectorSize - 1) / sectorSize
	if sectors > 0xff {
		return fmt.Errorf("%w: chunk needs %d sectors, limit is 255", ErrCorruptChunk, sectors)
	}

	start := r.findFreeRun(slot(x, z), sectors)

	// Pad to a whole number of sectors so later chunks stay aligned.
	padded := make([]byte, sectors*sectorSize)
	copy(padded, payload)
	if _, err := out.WriteAt(padded, int64(start)*sectorSize); err != nil {
		return err
	}

	return r.updateTables(out, slot(x, z), uint32(start)<<8|uint32(sectors), uint32(time.Now().Unix()))
}

// buildChunkPayload produces the on-disk form: a 4-byte big-endian length
// (compression byte included), the compression byte and the zlib stream.
func buildChunkPayload(root *nbt.Compound) ([]byte, error) {
	var compressed bytes.Buffer
	deflater := zlib.NewWriter(&compressed)
	if err := nbt.NewEncoder(deflater).Encode(root, ""); err != nil {
		deflater.Close()
		return nil, err
	}
	if err := deflater.Close(); err != nil {
		return nil, err
	}

	payload := make([]byte, 0, 5+compressed.Len())
	payload = binary.BigEndian.AppendUint32(payload, uint32(compressed.Len())+1)
	payload = append(payload, byte(CompressionZlib))
	return append(payload, compressed.Bytes()...), nil
}

// findFreeRun picks the first run of need free sectors after the header,
// ignoring the sectors currently held by the slot being replaced. Falls back
// to appending past the last allocated sector.
func (r *Region) findFreeRun(replacing, need int) int {
	end := headerSize / sectorSize
	var used []bool
	for idx, location := range r.locations {
		if location == 0 || idx == replacing {
			continue
		}
		offset := int(location >> 8)
		count := int(location & 0xff)
		for len(used) < offset+count {
			used = append(used, false)
		}
		for s := 0; s < count; s++ {
			used[offset+s] = true
		}
		if offset+count > end {
			end = offset + count
		}
	}

	run, start := 0, 0
	for s := headerSize / sectorSize; s < len(used); s++ {
		if used[s] {
			run = 0
			continue
		}
		if run == 0 {
			start = s
		}
		if run++; run >= need {
			return start
		}
	}
	return end
}

func (r *Region) updateTables(out io.WriterAt, idx int, location, mtime uint32) error {
	r.locations[idx] = location
	r.mtimes[idx] = mtime

	var entry [4]byte
	binary.BigEndian.PutUint32(entry[:], location)
	if _, err := out.WriteAt(entry[:], int64(idx)*4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(entry[:], mtime)
	_, err := out.WriteAt(entry[:], sectorSize+int64(idx)*4)
	return err
}
