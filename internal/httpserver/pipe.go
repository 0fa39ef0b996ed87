package httpserver

import "net"

// DialLocal returns the client end of an in-memory connection whose server
// end is served like any accepted connection.
func (s *Server) DialLocal() net.Conn {
	client, server := net.Pipe()
	go s.ServeConn(server)
	return client
}
