package analytics

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func strPtr(s string) *string { return &s }

func TestClickEventCodec_RoundTrip(t *testing.T) {
	clickedAt := time.Date(2025, 3, 1, 12, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name string
		ev   ClickEvent
	}{
		{
			name: "all fields",
			ev: ClickEvent{
				LinkID:    "l1",
				ClickedAt: clickedAt,
				Referrer:  strPtr("https://news.example.com"),
				UserAgent: strPtr("curl/8.0"),
				IPHash:    "abc123",
				Country:   strPtr("BR"),
			},
		},
		{
			name: "nullable fields absent",
			ev:   ClickEvent{LinkID: "l2", ClickedAt: clickedAt, IPHash: "def456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeClickEvent(tt.ev)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			got, err := DecodeClickEvent(payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.LinkID != tt.ev.LinkID || got.IPHash != tt.ev.IPHash {
				t.Fatalf("got %+v, want %+v", got, tt.ev)
			}
			if !got.ClickedAt.Equal(tt.ev.ClickedAt) {
				t.Fatalf("clickedAt = %v, want %v", got.ClickedAt, tt.ev.ClickedAt)
			}
			if !sameOptional(got.Referrer, tt.ev.Referrer) || !sameOptional(got.UserAgent, tt.ev.UserAgent) || !sameOptional(got.Country, tt.ev.Country) {
				t.Fatalf("optional fields mismatch: got %+v, want %+v", got, tt.ev)
			}
		})
	}
}

func TestEncodeClickEvent_NullsAreExplicit(t *testing.T) {
	payload, err := EncodeClickEvent(ClickEvent{LinkID: "l1", ClickedAt: time.Unix(0, 0)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"referrer", "userAgent", "country"} {
		v, ok := raw[key]
		if !ok {
			t.Fatalf("%s missing from payload %s", key, payload)
		}
		if v != nil {
			t.Fatalf("%s = %v, want null", key, v)
		}
	}
}

func TestDecodeClickEvent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{{"},
		{"missing link id", `{"clickedAt":"2025-01-01T00:00:00Z","ipHash":"x"}`},
		{"bad timestamp", `{"linkId":"l1","clickedAt":"yesterday","ipHash":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClickEvent([]byte(tt.payload))
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}

func TestNewClickEvent_Normalizes(t *testing.T) {
	longUA := strings.Repeat("a", MaxHeaderValueLength+100)
	ev := NewClickEvent("l1", time.Now(), "  ", longUA, "hash", "br")

	if ev.Referrer != nil {
		t.Fatalf("blank referrer should be nil, got %q", *ev.Referrer)
	}
	if ev.UserAgent == nil || len(*ev.UserAgent) != MaxHeaderValueLength {
		t.Fatalf("user agent not truncated to %d bytes", MaxHeaderValueLength)
	}
	if ev.Country == nil || *ev.Country != "BR" {
		t.Fatalf("country = %v, want BR", ev.Country)
	}
}

func TestNewClickEvent_UnknownCountry(t *testing.T) {
	for _, raw := range []string{"", "XX", "T1", "BRA", "1A"} {
		if ev := NewClickEvent("l1", time.Now(), "", "", "", raw); ev.Country != nil {
			t.Fatalf("country %q should be dropped, got %q", raw, *ev.Country)
		}
	}
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 10) // 2 bytes each
	got := truncate(s, 5)
	if got != "éé" {
		t.Fatalf("truncate = %q, want %q", got, "éé")
	}
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func TestNewClickEvent_InvalidUTF8RoundTrips(t *testing.T) {
	ev := NewClickEvent("l1", time.Now(),
		strings.Repeat("\x80", 600),
		strings.Repeat("\xff", 600)+"Mozilla/5.0"+strings.Repeat("\xfe", 10),
		"hash", "US",
	)

	if ev.Referrer != nil {
		t.Fatalf("referrer of only invalid bytes should be nil, got %q", *ev.Referrer)
	}
	if ev.UserAgent == nil || *ev.UserAgent != "Mozilla/5.0" {
		t.Fatalf("userAgent = %v, want Mozilla/5.0", ev.UserAgent)
	}

	payload, err := EncodeClickEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeClickEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sameOptional(got.UserAgent, ev.UserAgent) || !sameOptional(got.Referrer, ev.Referrer) {
		t.Fatalf("round trip changed headers: got ua=%v ref=%v", got.UserAgent, got.Referrer)
	}
}

func TestTruncate_MixedInvalidBytesStayWithinCap(t *testing.T) {
	raw := strings.Repeat("a\xff", 600)

	got := truncate(raw, MaxHeaderValueLength)
	if len(got) != MaxHeaderValueLength {
		t.Fatalf("len = %d, want %d", len(got), MaxHeaderValueLength)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncated value is not valid UTF-8")
	}

	payload, err := EncodeClickEvent(ClickEvent{LinkID: "l1", ClickedAt: time.Now(), UserAgent: &got})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeClickEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.UserAgent == nil || len(*decoded.UserAgent) != MaxHeaderValueLength {
		t.Fatalf("decoded userAgent length changed: %v", decoded.UserAgent)
	}
}
