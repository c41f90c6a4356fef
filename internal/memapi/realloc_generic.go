//go:build !linux

package memapi

// sysRealloc on platforms without mremap: map a new region, copy the
// overlap, release the old one. If the new mapping fails the old one
// is still released first; the old address is dead either way.
func sysRealloc(old []byte, n int) ([]byte, error) {
	b, err := sysAlloc(n)
	if err != nil {
		_ = sysFree(old)
		return nil, err
	}
	copy(b, old)
	_ = sysFree(old)
	return b, nil
}
