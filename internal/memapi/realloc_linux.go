//go:build linux

package memapi

import (
	"golang.org/x/sys/unix"
)

// sysRealloc resizes via mremap, which moves the mapping when it
// cannot grow in place. Lock state carries over with the pages. On
// failure the old mapping is released before reporting: the contract
// is that the old address is dead either way.
func sysRealloc(old []byte, n int) ([]byte, error) {
	b, err := unix.Mremap(old, n, unix.MREMAP_MAYMOVE)
	if err != nil {
		_ = sysFree(old)
		return nil, err
	}
	return b, nil
}
