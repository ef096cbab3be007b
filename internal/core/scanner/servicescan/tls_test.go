package servicescan

import "testing"

func TestLooksLikeTLS(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want bool
	}{
		{"valid TLS 1.2 handshake header", []byte{0x16, 0x03, 0x03}, true},
		{"valid TLS 1.0 alert header", []byte{0x15, 0x03, 0x01}, true},
		{"valid application data header", []byte{0x17, 0x03, 0x04}, true},
		{"too short", []byte{0x16, 0x03}, false},
		{"empty", nil, false},
		{"wrong content type", []byte{0x10, 0x03, 0x01}, false},
		{"wrong major version", []byte{0x16, 0x02, 0x01}, false},
		{"minor version out of range", []byte{0x16, 0x03, 0x05}, false},
		{"plain HTTP response", []byte("HTTP/1.1 200"), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := LooksLikeTLS(c.in); got != c.want {
				t.Errorf("LooksLikeTLS(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
