// Package site はサイトの静的アーティファクト（sitemap.xml、JSON-LD）を生成する。
package site

import (
	"github.com/hitoshi/folio/internal/security"
)

// Profile はサイト所有者の構造化データに使用するプロフィール情報。
type Profile struct {
	Name        string
	JobTitle    string
	URL         string
	Description string
	SameAs      []string // SNSや外部プロフィールのURL
}

// PersonJSONLD はschema.orgのPerson型のJSON-LD表現。
type PersonJSONLD struct {
	Context     string   `json:"@context"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	JobTitle    string   `json:"jobTitle,omitempty"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
}

// BuildPersonJSONLD はプロフィールからPersonのJSON-LDを構築する。
func BuildPersonJSONLD(p Profile) PersonJSONLD {
	return PersonJSONLD{
		Context:     "https://schema.org",
		Type:        "Person",
		Name:        p.Name,
		JobTitle:    p.JobTitle,
		URL:         p.URL,
		Description: p.Description,
		SameAs:      p.SameAs,
	}
}

// PersonScriptTag はHTMLに埋め込み可能なJSON-LDのscriptタグを返す。
// プロフィール値に</script>やシングルクォートが含まれていても
// タグを破壊しないよう、エスケープ済みJSONのみを埋め込む。
func PersonScriptTag(p Profile) string {
	return `<script type="application/ld+json">` +
		security.SafeJSONMarshal(BuildPersonJSONLD(p)) +
		`</script>`
}
