package server

import (
	"net"
	"strconv"

	"github.com/habiliai/agenteat/errors"
)

// FindAvailablePort returns the first port in [start, start+attempts) that
// can be bound on host.
func FindAvailablePort(host string, start, attempts int) (int, error) {
	for port := start; port < start+attempts; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		if err := l.Close(); err != nil {
			return 0, errors.Wrapf(err, "failed to release port %d", port)
		}
		return port, nil
	}

	return 0, errors.Wrapf(errors.ErrInvalidConfig, "no available port in range %d-%d", start, start+attempts-1)
}
