package socks

import (
	"net"
	"strconv"
)

// localConn is an in-process connection presented with TCP addresses, as
// the proxy reports the bound address of every CONNECT target.
type localConn struct {
	net.Conn
	laddr *net.TCPAddr
	raddr *net.TCPAddr
}

func newLocalConn(c net.Conn, target string) *localConn {
	raddr, _ := net.ResolveTCPAddr("tcp", target)
	if raddr == nil {
		raddr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
	}
	return &localConn{
		Conn:  c,
		laddr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)},
		raddr: raddr,
	}
}

// LocalAddr returns the local network address.
func (c *localConn) LocalAddr() net.Addr {
	return c.laddr
}

// RemoteAddr returns the remote network address.
func (c *localConn) RemoteAddr() net.Addr {
	return c.raddr
}

// isLocal reports whether a CONNECT target addresses the web server
// listening on local. An unspecified listen host accepts any loopback
// target on the same port.
func isLocal(local, target string) bool {
	lhost, lport, err := net.SplitHostPort(local)
	if err != nil {
		return false
	}
	thost, tport, err := net.SplitHostPort(target)
	if err != nil || !samePort(lport, tport) {
		return false
	}
	if lhost == thost {
		return true
	}
	tip := net.ParseIP(thost)
	if tip == nil || !tip.IsLoopback() {
		return false
	}
	lip := net.ParseIP(lhost)
	return lhost == "" || lhost == "localhost" || (lip != nil && (lip.IsUnspecified() || lip.IsLoopback()))
}

func samePort(a, b string) bool {
	pa, err := strconv.Atoi(a)
	if err != nil {
		return false
	}
	pb, err := strconv.Atoi(b)
	return err == nil && pa == pb
}
