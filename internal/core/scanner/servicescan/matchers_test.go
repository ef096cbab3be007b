package servicescan

import "testing"

func TestIdentify_BinarySignatureBeatsText(t *testing.T) {
	resp := []byte("+PONG\r\n")
	got := Identify(resp, false, nil)
	if got.Service != "Redis" {
		t.Errorf("Identify() = %+v, want Redis", got)
	}
}

func TestIdentify_TextMatcherHighestWeightWins(t *testing.T) {
	// SSH (weight 95) beats the FTP and SMTP "220 " patterns (weight 85)
	// when a banner carries both.
	resp := []byte("220 SSH-2.0-OpenSSH_8.9\r\n")
	got := Identify(resp, false, nil)
	if got.Service != "SSH" {
		t.Errorf("Identify() = %+v, want SSH", got)
	}
}

func TestIdentify_CaseInsensitiveForNonSensitiveMatchers(t *testing.T) {
	resp := []byte("http/1.1 200 OK\r\n")
	got := Identify(resp, false, nil)
	if got.Service != "HTTP" {
		t.Errorf("Identify() = %+v, want HTTP (case-insensitive match)", got)
	}
}

func TestIdentify_HintsFallbackAppliesWhenNoTableMatch(t *testing.T) {
	hints := []HintSet{{Name: "CustomProto", Patterns: []string{"hello from customproto"}}}
	resp := []byte("hello from CustomProto daemon v1\r\n")

	got := Identify(resp, false, hints)
	if got.Service != "CustomProto" {
		t.Errorf("Identify() = %+v, want the hints-fallback match CustomProto", got)
	}
	if got.Weight != hintsWeight {
		t.Errorf("Identify() weight = %d, want %d", got.Weight, hintsWeight)
	}
}

func TestIdentify_HintsFallbackTiesBreakByTableOrder(t *testing.T) {
	// Both entries match; "First" is declared before "Second" in the
	// (ordered) hints table, so it must win the weight-30 tie.
	hints := []HintSet{
		{Name: "First", Patterns: []string{"shared-banner"}},
		{Name: "Second", Patterns: []string{"shared-banner"}},
	}
	resp := []byte("greetings shared-banner daemon\r\n")

	got := Identify(resp, false, hints)
	if got.Service != "First" {
		t.Errorf("Identify() = %+v, want First (declared first in the table)", got)
	}
}

func TestIdentify_TLSSeedAppliesWhenNothingElseMatches(t *testing.T) {
	got := Identify([]byte{}, true, nil)
	if got.Service != "HTTPS" {
		t.Errorf("Identify() with isTLS and no other match = %+v, want HTTPS", got)
	}
}

func TestIdentify_StrongerTextMatcherBeatsTLSSeed(t *testing.T) {
	// SSH (weight 95) must still win over the TLS seed's weight 80 even
	// though isTLS is true, since a higher-weight match always wins.
	resp := []byte("SSH-2.0-OpenSSH_8.9\r\n")
	got := Identify(resp, true, nil)
	if got.Service != "SSH" {
		t.Errorf("Identify() = %+v, want SSH to win over the TLS seed", got)
	}
}

func TestIdentify_UnknownWhenNothingMatches(t *testing.T) {
	got := Identify([]byte("completely unrecognizable gibberish"), false, nil)
	if got.Service != "Unknown" {
		t.Errorf("Identify() = %+v, want Unknown", got)
	}
}
