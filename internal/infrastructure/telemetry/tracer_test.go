package telemetry

import "testing"

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in           string
		wantHost     string
		wantInsecure bool
	}{
		{"http://localhost:4318", "localhost:4318", true},
		{"http://collector:4318/v1/traces", "collector:4318", true},
		{"https://otel.example.com/", "otel.example.com", false},
		{"collector:4318", "collector:4318", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, insecure := parseEndpoint(tt.in)
			if host != tt.wantHost || insecure != tt.wantInsecure {
				t.Errorf("parseEndpoint(%q) = (%q, %v), want (%q, %v)", tt.in, host, insecure, tt.wantHost, tt.wantInsecure)
			}
		})
	}
}
