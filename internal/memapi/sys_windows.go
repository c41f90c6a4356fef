//go:build windows

package memapi

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func sysAlloc(n int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(n), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	// Best-effort, same rationale as mlock on unix.
	_ = windows.VirtualLock(addr, uintptr(n))
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

func sysFree(b []byte) error {
	addr := uintptr(unsafe.Pointer(&b[0]))
	_ = windows.VirtualUnlock(addr, uintptr(len(b)))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
