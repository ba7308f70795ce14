package site

import (
	"encoding/xml"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestGenerator_BuildSitemap はSPAルート全件のsitemap.xmlが
// 構築されることを検証する。
func TestGenerator_BuildSitemap(t *testing.T) {
	g := NewGenerator("https://example.com/", t.TempDir(), testLogger())

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	body, err := g.BuildSitemap(now)
	if err != nil {
		t.Fatalf("BuildSitemap() error = %v", err)
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		t.Fatalf("failed to parse sitemap: %v", err)
	}
	if len(set.URLs) != len(spaRoutes) {
		t.Fatalf("urls = %d, want %d", len(set.URLs), len(spaRoutes))
	}

	// 末尾スラッシュは正規化され、ルートURLが二重スラッシュにならない
	if set.URLs[0].Loc != "https://example.com/" {
		t.Errorf("first loc = %q", set.URLs[0].Loc)
	}
	if set.URLs[1].Loc != "https://example.com/about" {
		t.Errorf("second loc = %q", set.URLs[1].Loc)
	}
	if set.URLs[0].LastMod != "2025-06-02" {
		t.Errorf("lastmod = %q", set.URLs[0].LastMod)
	}

	if !strings.HasPrefix(string(body), "<?xml") {
		t.Error("sitemap is missing XML declaration")
	}
}

// TestGenerator_WriteFiles は全アーティファクトが出力ディレクトリに
// 書き出されることを検証する。
func TestGenerator_WriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	g := NewGenerator("https://example.com", dir, testLogger())

	profile := Profile{Name: "市川 仁", URL: "https://example.com"}
	if err := g.WriteFiles(profile); err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}

	for _, name := range []string{"sitemap.xml", "robots.txt", "jsonld.html"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s was not written: %v", name, err)
		}
	}

	robots, err := os.ReadFile(filepath.Join(dir, "robots.txt"))
	if err != nil {
		t.Fatalf("failed to read robots.txt: %v", err)
	}
	if !strings.Contains(string(robots), "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt = %q, want Sitemap line", string(robots))
	}

	jsonld, err := os.ReadFile(filepath.Join(dir, "jsonld.html"))
	if err != nil {
		t.Fatalf("failed to read jsonld.html: %v", err)
	}
	if !strings.Contains(string(jsonld), `"@type":"Person"`) {
		t.Errorf("jsonld.html = %q, want Person JSON-LD", string(jsonld))
	}
}
