package site

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// spaRoutes はサイトマップに含めるSPAのルート一覧。
// フロントエンドのルーティング定義と同期を保つこと。
var spaRoutes = []string{
	"/",
	"/about",
	"/works",
	"/blog",
	"/chat",
}

// sitemapURL はsitemap.xmlの1エントリ。
type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

// urlSet はsitemap.xmlのルート要素。
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Generator はサイトの静的アーティファクトをファイルに書き出す。
type Generator struct {
	baseURL   string
	outputDir string
	logger    *slog.Logger
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
func NewGenerator(baseURL, outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		outputDir: outputDir,
		logger:    logger,
	}
}

// BuildSitemap はSPAルートのsitemap.xmlを構築する。
func (g *Generator) BuildSitemap(now time.Time) ([]byte, error) {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
	}
	lastMod := now.Format("2006-01-02")
	for _, route := range spaRoutes {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        g.baseURL + route,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap.xmlの構築に失敗しました: %w", err)
	}

	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// buildRobots はsitemapの場所を含むrobots.txtを構築する。
func (g *Generator) buildRobots() []byte {
	return []byte("User-agent: *\nAllow: /\nSitemap: " + g.baseURL + "/sitemap.xml\n")
}

// WriteFiles はsitemap.xml、robots.txt、JSON-LDスニペットを出力ディレクトリに書き出す。
// 出力ディレクトリが存在しない場合は作成する。
func (g *Generator) WriteFiles(profile Profile) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	sitemap, err := g.BuildSitemap(time.Now())
	if err != nil {
		return err
	}

	files := map[string][]byte{
		"sitemap.xml": sitemap,
		"robots.txt":  g.buildRobots(),
		"jsonld.html": []byte(PersonScriptTag(profile) + "\n"),
	}

	for name, content := range files {
		path := filepath.Join(g.outputDir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("%sの書き込みに失敗しました: %w", name, err)
		}
		g.logger.Info("サイトアーティファクトを書き出しました",
			slog.String("path", path),
			slog.Int("bytes", len(content)),
		)
	}

	return nil
}
