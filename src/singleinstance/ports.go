package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550

	minPort = 1024
	maxPort = 65535
)

// getPortRange reads SINGLEINSTANCE_PORT_START and SINGLEINSTANCE_PORT_END
// (inclusive). Unset or malformed values keep the defaults; the result is
// ordered and clamped to unprivileged ports.
func getPortRange() (int, int) {
	start := max(envPort("SINGLEINSTANCE_PORT_START", defaultPortStart), minPort)
	end := min(envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd), maxPort)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

// PortRange exposes the effective port range for logging.
func PortRange() (int, int) { return getPortRange() }
