package server

import (
	"net"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ServeDiscovery answers every UDP datagram received on conn with the
// server's TCP listening port as decimal ASCII, grounded on spec.md §4.7
// and the original WQServer's discovery responder. Blocks until conn is
// closed.
func ServeDiscovery(conn *net.UDPConn, tcpPort int, log *logrus.Logger) {
	reply := []byte(strconv.Itoa(tcpPort))
	buf := make([]byte, 64)
	for {
		_, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.WithError(err).Warn("discovery: read failed, stopping responder")
			return
		}
		if _, err := conn.WriteToUDP(reply, addr); err != nil {
			log.WithError(err).Warn("discovery: reply failed")
		}
	}
}
