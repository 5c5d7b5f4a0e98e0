package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// DefaultSocketBuffer is the kernel buffer size requested on both ends. A
// large receive buffer keeps bursts of full-size datagrams from being dropped
// while the engine is busy.
const DefaultSocketBuffer = 8 << 20

// UDPConn is a PacketConn over a UDP socket.
type UDPConn struct {
	conn *net.UDPConn
}

// ListenUDP binds a receiving socket on addr.
func ListenUDP(addr string) (*UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	if err := conn.SetReadBuffer(DefaultSocketBuffer); err != nil {
		logger.Warn("set read buffer failed", "addr", addr, "error", err)
	}
	if size, err := socketBuffer(conn); err == nil {
		logger.Debug("udp receiver bound", "addr", conn.LocalAddr().String(), "rcvbuf", size)
	}

	return &UDPConn{conn: conn}, nil
}

// DialUDP opens a sending socket connected to addr. Broadcast is enabled so
// that a broadcast address may be configured as destination.
func DialUDP(addr string) (*UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if err := enableBroadcast(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable broadcast: %w", err)
	}
	if err := conn.SetWriteBuffer(DefaultSocketBuffer); err != nil {
		logger.Warn("set write buffer failed", "addr", addr, "error", err)
	}

	return &UDPConn{conn: conn}, nil
}

// LocalAddr returns the bound local address.
func (c *UDPConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *UDPConn) WritePacket(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *UDPConn) ReadPacket(buf []byte, timeout time.Duration) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, ErrReadTimeout
		}
		return 0, err
	}
	return n, nil
}

func (c *UDPConn) Close() error {
	return c.conn.Close()
}
