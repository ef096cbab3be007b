package servicescan

import (
	"bytes"
	"strings"
)

// Match is a weighted service identification result (spec §4.5 step 8 /
// testable property 7: "arg-max over all enabled matchers, ties broken
// by table order").
type Match struct {
	Service string
	Weight  int
}

// binarySignatures maps exact byte prefixes to a service name and
// weight. Checked before the text matchers since a binary protocol
// reply is rarely ambiguous.
var binarySignatures = []struct {
	Prefix  []byte
	Service string
	Weight  int
}{
	{Prefix: []byte{0xff, 0x53, 0x4d, 0x42}, Service: "SMB", Weight: 100},
	{Prefix: []byte{0xfe, 0x53, 0x4d, 0x42}, Service: "SMB2", Weight: 100},
	{Prefix: []byte{0x03, 0x00}, Service: "RDP", Weight: 90},
	{Prefix: []byte("+PONG"), Service: "Redis", Weight: 95},
	{Prefix: []byte{0x05, 0x00}, Service: "SOCKS5", Weight: 90},
}

// textMatcher is one entry of the weighted text-matcher table.
type textMatcher struct {
	Name          string
	Weight        int
	Patterns      []string
	CaseSensitive bool
}

var textMatchers = []textMatcher{
	{Name: "HTTP", Weight: 80, Patterns: []string{"HTTP/1.", "HTTP/2"}},
	{Name: "SSH", Weight: 95, Patterns: []string{"SSH-1.", "SSH-2."}},
	{Name: "FTP", Weight: 85, Patterns: []string{"220 "}, CaseSensitive: true},
	{Name: "SMTP", Weight: 85, Patterns: []string{"220 ", "ESMTP"}},
	{Name: "POP3", Weight: 85, Patterns: []string{"+OK"}},
	{Name: "IMAP", Weight: 85, Patterns: []string{"* OK"}},
	{Name: "MySQL", Weight: 90, Patterns: []string{"mysql_native_password", "mariadb"}},
	{Name: "PostgreSQL", Weight: 85, Patterns: []string{"SCRAM-SHA-256", "FATAL"}},
	{Name: "Telnet", Weight: 60, Patterns: []string{"login:", "Username:"}},
	{Name: "MQTT", Weight: 70, Patterns: []string{string([]byte{0x20, 0x02})}},
	{Name: "VNC", Weight: 90, Patterns: []string{"RFB 0"}},
	{Name: "DNS", Weight: 70, Patterns: []string{"\x00\x01\x00\x00"}},
}

const (
	httpsSeedWeight = 80
	hintsWeight     = 30
)

// Identify implements spec §4.5 step 8: highest-weight matcher wins, with
// ties broken by table order (binary before text before hints before the
// TLS seed, and within each table, declaration order). hints must be in
// catalog declaration order — see Catalog.Hints.
func Identify(response []byte, isTLS bool, hints []HintSet) Match {
	best := Match{Service: "Unknown", Weight: -1}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(response, sig.Prefix) && sig.Weight > best.Weight {
			best = Match{Service: sig.Service, Weight: sig.Weight}
		}
	}

	text := string(response)
	lowered := strings.ToLower(text)
	for _, m := range textMatchers {
		haystack := lowered
		if m.CaseSensitive {
			haystack = text
		}
		hit := false
		for _, pat := range m.Patterns {
			needle := pat
			if !m.CaseSensitive {
				needle = strings.ToLower(pat)
			}
			if strings.Contains(haystack, needle) {
				hit = true
				break
			}
		}
		if hit && m.Weight > best.Weight {
			best = Match{Service: m.Name, Weight: m.Weight}
		}
	}

	for _, set := range hints {
		for _, h := range set.Patterns {
			if strings.Contains(lowered, h) && hintsWeight > best.Weight {
				best = Match{Service: set.Name, Weight: hintsWeight}
				break
			}
		}
	}

	if isTLS && httpsSeedWeight > best.Weight {
		best = Match{Service: "HTTPS", Weight: httpsSeedWeight}
	}

	return best
}
