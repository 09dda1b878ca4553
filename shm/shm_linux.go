//go:build linux

package shm

import (
	"golang.org/x/sys/unix"
)

// On Linux, shm_open is a thin wrapper over files in /dev/shm.
const shmDir = "/dev/shm/"

func shmOpen(name string, flags int, mode uint32) (int, error) {
	return unix.Open(shmDir+name, flags|unix.O_CLOEXEC|unix.O_NOFOLLOW, mode)
}

func shmUnlink(name string) error {
	return unix.Unlink(shmDir + name)
}
