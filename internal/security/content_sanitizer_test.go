package security

import (
	"strings"
	"testing"
)

// TestSanitize_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitize_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>テスト段落</p>",
			wantContains: []string{"<p>テスト段落</p>"},
		},
		{
			name:         "見出しタグが許可される",
			input:        "<h2>見出し</h2><h3>小見出し</h3>",
			wantContains: []string{"<h2>見出し</h2>", "<h3>小見出し</h3>"},
		},
		{
			name:         "brタグが許可される",
			input:        "行1<br>行2",
			wantContains: []string{"<br>", "行1", "行2"},
		},
		{
			name:         "aタグがhttps hrefで許可される",
			input:        `<a href="https://example.com">リンク</a>`,
			wantContains: []string{"<a", "href", "https://example.com", "リンク", "</a>"},
		},
		{
			name:         "リストタグが許可される",
			input:        "<ul><li>項目1</li><li>項目2</li></ul>",
			wantContains: []string{"<ul>", "<li>", "項目1", "項目2", "</li>", "</ul>"},
		},
		{
			name:         "preタグとcodeタグが許可される",
			input:        "<pre><code>func main() {}</code></pre>",
			wantContains: []string{"<pre>", "<code>", "func main() {}", "</code>", "</pre>"},
		},
		{
			name:         "blockquoteタグが許可される",
			input:        "<blockquote>引用</blockquote>",
			wantContains: []string{"<blockquote>引用</blockquote>"},
		},
		{
			name:         "strongタグとemタグが許可される",
			input:        "<strong>太字</strong><em>強調</em>",
			wantContains: []string{"<strong>太字</strong>", "<em>強調</em>"},
		},
		{
			name:         "imgタグがhttps srcで許可される",
			input:        `<img src="https://example.com/image.png" alt="画像">`,
			wantContains: []string{"<img", "src", "https://example.com/image.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_ForbiddenContent は危険なタグ・属性・URLが除去されることを検証する。
func TestSanitize_ForbiddenContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantAbsent   []string
		wantContains []string
	}{
		{
			name:         "scriptタグが除去される",
			input:        `<p>テスト</p><script>alert('xss')</script>`,
			wantAbsent:   []string{"<script", "alert"},
			wantContains: []string{"テスト"},
		},
		{
			name:       "iframeタグが除去される",
			input:      `<iframe src="https://evil.com"></iframe>`,
			wantAbsent: []string{"<iframe", "evil.com"},
		},
		{
			name:         "styleタグが除去される",
			input:        `<p>テスト</p><style>body{display:none}</style>`,
			wantAbsent:   []string{"<style", "display:none"},
			wantContains: []string{"テスト"},
		},
		{
			name:         "onclickイベント属性が除去される",
			input:        `<p onclick="alert(1)">テスト</p>`,
			wantAbsent:   []string{"onclick", "alert"},
			wantContains: []string{"<p>テスト</p>"},
		},
		{
			name:       "javascript hrefが除去される",
			input:      `<a href="javascript:alert(1)">クリック</a>`,
			wantAbsent: []string{"javascript:", "href"},
		},
		{
			name:       "data srcの画像が除去される",
			input:      `<img src="data:image/svg+xml,<svg onload=alert(1)>">`,
			wantAbsent: []string{"data:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, must not contain %q", tt.input, got, absent)
				}
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_LinkHardening は外部リンクにtarget/rel属性が
// 自動付与されることを検証する。
func TestSanitize_LinkHardening(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.Sanitize(`<a href="https://example.com">外部リンク</a>`)

	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("Sanitize = %q, expected target=\"_blank\"", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("Sanitize = %q, expected rel noopener noreferrer", got)
	}
}

// TestSanitize_EmptyAndIdempotent は空入力と冪等性の契約を検証する。
func TestSanitize_EmptyAndIdempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty string", got)
	}

	input := `<p>テキスト</p><script>alert(1)</script><a href="https://example.com">a</a>`
	once := sanitizer.Sanitize(input)
	twice := sanitizer.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize is not idempotent: first=%q second=%q", once, twice)
	}
}
