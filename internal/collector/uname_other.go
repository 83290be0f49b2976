//go:build !unix

package collector

import (
	"os"
	"runtime"
)

// hostInfo falls back to the host name and the OS name.
func hostInfo() (string, string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", "", err
	}
	return host, runtime.GOOS, nil
}
