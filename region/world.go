package region

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var fileNameRe = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.(mca|mcr)$`)
var dimensionRe = regexp.MustCompile(`^DIM(-?\d+)$`)

// ParseFileName extracts region coordinates from a file name of the form
// r.<x>.<z>.mca (anvil) or r.<x>.<z>.mcr (legacy). Non-conforming names
// report ok=false rather than an error.
func ParseFileName(name string) (x, z int, ok bool) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	x, errX := strconv.Atoi(m[1])
	z, errZ := strconv.Atoi(m[2])
	if errX != nil || errZ != nil {
		return 0, 0, false
	}
	return x, z, true
}

// FileInfo describes one region file found on disk.
type FileInfo struct {
	Path string
	X    int
	Z    int
}

// EnumerateFiles lists the region files directly inside dir.
func EnumerateFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if x, z, ok := ParseFileName(entry.Name()); ok {
			files = append(files, FileInfo{Path: filepath.Join(dir, entry.Name()), X: x, Z: z})
		}
	}
	return files, nil
}

// EnumerateWorld lists region files per dimension under a world directory:
// the overworld's region/ subdirectory maps to key 0 and each DIM<n>/region/
// to key n.
func EnumerateWorld(root string) (map[int][]FileInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	dimensions := make(map[int][]FileInfo)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		if entry.Name() == "region" {
			files, err := EnumerateFiles(filepath.Join(root, "region"))
			if err != nil {
				return nil, err
			}
			dimensions[0] = files
			continue
		}

		m := dimensionRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		dim, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		regionDir := filepath.Join(root, entry.Name(), "region")
		if info, err := os.Stat(regionDir); err != nil || !info.IsDir() {
			continue
		}
		files, err := EnumerateFiles(regionDir)
		if err != nil {
			return nil, err
		}
		dimensions[dim] = files
	}
	return dimensions, nil
}

// GroupFiles buckets region files by a caller-chosen key, e.g. their region
// x coordinate.
func GroupFiles[K comparable](files []FileInfo, key func(FileInfo) K) map[K][]FileInfo {
	groups := make(map[K][]FileInfo)
	for _, file := range files {
		k := key(file)
		groups[k] = append(groups[k], file)
	}
	return groups
}
