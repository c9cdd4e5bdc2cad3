package server

import (
	"testing"

	"github.com/treevol/treevol/internal/config"
)

func TestNewSiteFromConfig(t *testing.T) {
	cfg := &config.Config{
		Global: config.GlobalConfig{ListenPort: 5000},
		Worker: config.WorkerConfig{
			Origin:    "https://treevol.example.org/app",
			CacheName: "treevol-static-v1",
		},
	}
	site, err := NewSite(cfg)
	if err != nil {
		t.Fatalf("new site error: %v", err)
	}
	if site.Origin.String() != "https://treevol.example.org/app/" {
		t.Fatalf("unexpected origin %s", site.Origin)
	}
	if site.ListenPort != 5000 || site.Generation != "treevol-static-v1" {
		t.Fatalf("unexpected site: %+v", site)
	}

	if _, err := NewSite(&config.Config{Worker: config.WorkerConfig{Origin: "::bad"}}); err == nil {
		t.Fatalf("expected error for invalid origin")
	}
	if _, err := NewSite(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestSiteResolve(t *testing.T) {
	site := testSite(t)
	cases := []struct {
		path, query, want string
	}{
		{"/", "", "https://treevol.example.org/app/"},
		{"", "", "https://treevol.example.org/app/"},
		{"/index.html", "", "https://treevol.example.org/app/index.html"},
		{"/book_data.json", "v=3", "https://treevol.example.org/app/book_data.json?v=3"},
		{"/icons/", "", "https://treevol.example.org/app/icons/"},
		{"/../../etc/passwd", "", "https://treevol.example.org/app/etc/passwd"},
		{"//evil.example.com/x.js", "", "https://treevol.example.org/app/evil.example.com/x.js"},
	}
	for _, tc := range cases {
		if got := site.Resolve(tc.path, tc.query).String(); got != tc.want {
			t.Fatalf("Resolve(%q, %q) = %s, want %s", tc.path, tc.query, got, tc.want)
		}
	}
}
