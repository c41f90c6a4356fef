package main

import (
	"fmt"
	"log"

	"github.com/rawbytedev/rawmem"
	"github.com/rawbytedev/rawmem/pkg/multistring"
)

func main() {
	// Raw buffer lifecycle: allocate, fill, duplicate, release.
	buf, err := rawmem.Alloc(32)
	if err != nil {
		log.Fatal(err)
	}
	defer buf.Close()

	*rawmem.Pointer[uint64](buf) = 0xFEEDFACE
	dup, err := buf.Clone()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("clone head: %#x\n", *rawmem.Pointer[uint64](dup))
	dup.Close()

	// Secure array: typed storage that is scrubbed on every release.
	key, err := rawmem.SecureArrayFrom([]byte("super secret key"))
	if err != nil {
		log.Fatal(err)
	}
	n, _ := key.IndexOf('s')
	fmt.Printf("key length %d, first 's' at %d\n", key.Len(), n)
	if err := key.Resize(32); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("resized to %d bytes\n", key.ByteSize())
	key.Close()

	// Multi-string block with a veto hook.
	list, err := multistring.NewList(256, func(old, next []string) error {
		fmt.Printf("change %v -> %v\n", old, next)
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
	defer list.Close()
	list.Add("PATH=/usr/bin")
	list.Add("HOME=/root")
	parsed, _ := multistring.Parse(list.Buffer())
	fmt.Printf("block: %v\n", parsed)
}
