package servicescan

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"lanscape/internal/core/dialer"
)

// LooksLikeTLS implements spec §4.5 step 6 / testable property 9: a TLS
// record layer header is 3 bytes — a content type in {0x14..0x17}, major
// version 0x03, and minor version in {0x01..0x04}.
func LooksLikeTLS(b []byte) bool {
	if len(b) < 3 {
		return false
	}
	return b[0] >= 0x14 && b[0] <= 0x17 && b[1] == 0x03 && b[2] >= 0x01 && b[2] <= 0x04
}

const defaultHeadRequest = "HEAD / HTTP/1.0\r\n\r\n"

// tlsReprobe re-probes ip:port over a TLS-wrapped connection, accepting
// any certificate (spec §4.5 step 6), sending a default HEAD request and
// reading the reply.
func tlsReprobe(ctx context.Context, ip string, port int, timeout time.Duration) (request, response string, ok bool) {
	address := fmt.Sprintf("%s:%d", ip, port)

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rawConn, err := dialer.Get().DialContext(dctx, "tcp", address)
	if err != nil {
		return "", "", false
	}
	defer rawConn.Close()

	tlsConn := tls.Client(rawConn, &tls.Config{InsecureSkipVerify: true})
	tlsConn.SetDeadline(time.Now().Add(timeout))
	if err := tlsConn.Handshake(); err != nil {
		return "", "", false
	}

	if _, err := tlsConn.Write([]byte(defaultHeadRequest)); err != nil {
		return defaultHeadRequest, "", false
	}

	tlsConn.SetReadDeadline(time.Now().Add(timeout / 2))
	buf := make([]byte, 1024)
	n, _ := tlsConn.Read(buf)
	if n == 0 {
		return defaultHeadRequest, "", true
	}
	return defaultHeadRequest, string(buf[:n]), true
}
