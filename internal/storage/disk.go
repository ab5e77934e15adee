package storage

import (
	"os"
	"path/filepath"
	"sort"
)

// Usage is the on-disk size of one named storage component.
type Usage struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// DiskUsage reports the size of each named path, sorted by name, and their total.
// Missing paths report 0 bytes.
func DiskUsage(paths map[string]string) ([]Usage, int64, error) {
	usages := make([]Usage, 0, len(paths))
	var total int64
	for name, p := range paths {
		n, err := DiskUsageBytes(p)
		if err != nil {
			return nil, 0, err
		}
		usages = append(usages, Usage{Name: name, Path: p, Bytes: n})
		total += n
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].Name < usages[j].Name })
	return usages, total, nil
}

// DiskUsageBytes returns the total size in bytes of the given paths.
// A directory is summed recursively. Empty and missing paths count as 0.
// SQLite sidecar files (-wal, -shm) are included for file paths.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if info.IsDir() {
			n, err := dirSize(p)
			if err != nil {
				return 0, err
			}
			total += n
			continue
		}
		total += info.Size()
		for _, suffix := range []string{"-wal", "-shm"} {
			if side, err := os.Stat(p + suffix); err == nil && !side.IsDir() {
				total += side.Size()
			}
		}
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
