package server

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

const maxPort = 65535

var ErrNoFreePort = errors.New("no free TCP port")

// FindFreePort returns the first port at or above start that can be bound on
// localhost. Ports in use are skipped; any other bind error is returned.
func FindFreePort(start int) (int, error) {
	if start <= 0 || start > maxPort {
		return 0, fmt.Errorf("invalid start port %d", start)
	}
	for port := start; port <= maxPort; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return 0, fmt.Errorf("check port %d: %w", port, err)
		}
	}
	return 0, fmt.Errorf("%w at or above %d", ErrNoFreePort, start)
}
