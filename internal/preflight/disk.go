package preflight

import (
	"syscall"

	"github.com/Aman-CERP/versio/internal/ui"
)

// MinDiskSpaceBytes is the least free space ever accepted.
const MinDiskSpaceBytes = 100 << 20

// RequiredBytes is the free space an index of a sourceSize-byte corpus
// needs: the copy, the chunk and term tables, and the WAL, each bounded by
// the corpus size.
func RequiredBytes(sourceSize int64) uint64 {
	return max(3*uint64(max(sourceSize, 0)), MinDiskSpaceBytes)
}

// CheckDiskSpace compares the space available to unprivileged users on
// path's filesystem against required.
func (c *Checker) CheckDiskSpace(path string, required uint64) CheckResult {
	r := requiredCheck("disk_space", path)

	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return r.fail("failed to check disk space: %v", err)
	}

	free := fs.Bavail * uint64(fs.Bsize)
	msg := ui.FormatBytes(int64(free)) + " free (need " + ui.FormatBytes(int64(required)) + ")"
	if free < required {
		return r.fail("%s", msg)
	}
	return r.pass(msg)
}
