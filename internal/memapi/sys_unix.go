//go:build unix

package memapi

import (
	"golang.org/x/sys/unix"
)

// sysAlloc maps a fresh anonymous private region. The mapping is
// mlock'd so secret material does not reach swap; lock failure is
// tolerated (RLIMIT_MEMLOCK is commonly tiny inside containers and
// the lock is hardening, not contract).
func sysAlloc(n int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	_ = unix.Mlock(b)
	return b, nil
}

func sysFree(b []byte) error {
	_ = unix.Munlock(b)
	return unix.Munmap(b)
}
