//go:build !unix

package transport

import (
	"errors"
	"net"
)

func enableBroadcast(*net.UDPConn) error {
	return nil
}

func socketBuffer(*net.UDPConn) (int, error) {
	return 0, errors.ErrUnsupported
}
