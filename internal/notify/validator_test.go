package notify

import (
	"errors"
	"testing"
)

func TestValidateTargetURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		allowInsecure bool
		wantErr       error
	}{
		{"public ip https", "https://203.0.113.10/hooks/wish", false, nil},
		{"explicit 443", "https://203.0.113.10:443/hooks", false, nil},
		{"http refused", "http://203.0.113.10/hooks", false, ErrInvalidScheme},
		{"localhost refused", "https://localhost/hooks", false, ErrLocalhostBlocked},
		{"loopback refused", "https://127.0.0.1/hooks", false, ErrLocalhostBlocked},
		{"dot local refused", "https://nas.local/hooks", false, ErrLocalhostBlocked},
		{"private range refused", "https://10.1.2.3/hooks", false, ErrPrivateIP},
		{"link local refused", "https://169.254.169.254/latest", false, ErrPrivateIP},
		{"odd port refused", "https://203.0.113.10:8443/hooks", false, ErrInvalidPort},
		{"no host", "https:///hooks", false, ErrEmptyHost},
		{"not a url", "::nope", false, ErrInvalidURL},
		{"ftp scheme", "ftp://203.0.113.10/hooks", false, ErrInvalidURL},
		{"dev allows http localhost", "http://localhost:9000/hooks", true, nil},
		{"dev still needs a host", "http:///hooks", true, ErrEmptyHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateTargetURL(tt.url, tt.allowInsecure); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTargetURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestExtractHost(t *testing.T) {
	t.Parallel()

	if got := ExtractHost("https://hooks.example.com/secret/path?token=x"); got != "hooks.example.com" {
		t.Errorf("ExtractHost() = %q", got)
	}
	if got := ExtractHost("::nope"); got != "(invalid)" {
		t.Errorf("ExtractHost(invalid) = %q", got)
	}
}
