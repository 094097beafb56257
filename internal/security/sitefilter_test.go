package security

import (
	"errors"
	"testing"
)

func TestSiteFilter_DefaultAllowsHTTPS(t *testing.T) {
	t.Parallel()

	f := NewSiteFilter(SiteFilterConfig{})

	tests := []struct {
		url     string
		allowed bool
	}{
		{"https://blog.example.com", true},
		{"http://127.0.0.1:8080", true},
		{"http://localhost/wp", true},
		{"http://blog.example.com", false},
		{"ftp://blog.example.com", false},
		{"https://", false},
		{"::bad", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			err := f.Check(tt.url)
			if tt.allowed && err != nil {
				t.Errorf("expected allow, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrSiteBlocked) {
				t.Errorf("expected ErrSiteBlocked, got %v", err)
			}
		})
	}
}

func TestSiteFilter_AllowInsecure(t *testing.T) {
	t.Parallel()

	f := NewSiteFilter(SiteFilterConfig{AllowInsecure: true})
	if err := f.Check("http://blog.example.com"); err != nil {
		t.Errorf("expected allow, got %v", err)
	}
}

func TestSiteFilter_AllowList(t *testing.T) {
	t.Parallel()

	f := NewSiteFilter(SiteFilterConfig{
		AllowDomains: []string{" Example.com ", ""},
		DenyDomains:  []string{"staging.example.com"},
	})

	tests := []struct {
		url     string
		allowed bool
	}{
		{"https://example.com/path", true},
		{"https://blog.example.com", true},
		{"https://staging.example.com", false},
		{"https://notexample.com", false},
		{"https://evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			err := f.Check(tt.url)
			if tt.allowed && err != nil {
				t.Errorf("expected allow, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrSiteBlocked) {
				t.Errorf("expected ErrSiteBlocked, got %v", err)
			}
		})
	}
}
