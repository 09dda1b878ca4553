//go:build darwin || linux

package shm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CreateRing creates a new POSIX shared memory ring buffer.
func CreateRing(name string) (*RingBuffer, error) {
	// Unlink any stale segment first.
	_ = shmUnlink(name)

	fd, err := shmOpen(name, unix.O_CREAT|unix.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("shm_open %s: %w", name, err)
	}

	if err := unix.Ftruncate(fd, SHMSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate %s: %w", name, err)
	}

	buf, err := unix.Mmap(fd, 0, SHMSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap %s: %w", name, err)
	}

	clear(buf)

	return &RingBuffer{buf: buf, name: name, fd: fd}, nil
}

// OpenRing opens an existing POSIX shared memory ring buffer (read-only).
func OpenRing(name string) (*RingBuffer, error) {
	fd, err := shmOpen(name, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("shm_open %s: %w", name, err)
	}

	buf, err := unix.Mmap(fd, 0, SHMSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap %s: %w", name, err)
	}

	return &RingBuffer{buf: buf, name: name, fd: fd}, nil
}

// Close unmaps and closes the shared memory (does not unlink).
func (r *RingBuffer) Close() error {
	if r.fd < 0 {
		return nil
	}
	if err := unix.Munmap(r.buf); err != nil {
		return err
	}
	return unix.Close(r.fd)
}

// Unlink removes the named shared memory segment.
func (r *RingBuffer) Unlink() error {
	return shmUnlink(r.name)
}
