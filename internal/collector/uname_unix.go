//go:build unix

package collector

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// hostInfo returns the node name and kernel release from uname(2).
func hostInfo() (string, string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", "", fmt.Errorf("uname: %w", err)
	}
	return unix.ByteSliceToString(u.Nodename[:]), unix.ByteSliceToString(u.Release[:]), nil
}
