package net

import (
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SharedPortManager keeps track of the ports handed out to the tests of the process.
var SharedPortManager = &PortManager{
	usedPorts: make(map[int]bool),
}

type PortManager struct {
	usedPorts map[int]bool
	mutex     sync.Mutex
}

// GetFreePort returns a port which is free at the moment and has not been
// returned before.
func (pm *PortManager) GetFreePort() (int, error) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	for {
		l, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			return 0, err
		}
		port := l.Addr().(*net.TCPAddr).Port
		if err := l.Close(); err != nil {
			return 0, err
		}

		if !pm.usedPorts[port] {
			pm.usedPorts[port] = true
			return port, nil
		}
	}
}

// FreeAddress returns localhost address with a free port.
func (pm *PortManager) FreeAddress(t *testing.T) string {
	t.Helper()
	port, err := pm.GetFreePort()
	require.NoError(t, err)
	return fmt.Sprintf("localhost:%d", port)
}
