package security

import "testing"

// TestSanitizeInput は入力正規化の各規則を検証する。
func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "NULバイトの除去",
			input: "Hello\x00World",
			want:  "HelloWorld",
		},
		{
			name:  "ASCII制御文字の除去",
			input: "a\x01b\bc\vd\fe\x1ff",
			want:  "abcdef",
		},
		{
			name:  "DEL(0x7F)の除去",
			input: "a\x7fb",
			want:  "ab",
		},
		{
			name:  "TAB/LF/CRは保持される",
			input: "a\tb\nc\rd",
			want:  "a\tb\nc\rd",
		},
		{
			name:  "NFKC正規化: 上付き数字",
			input: "x²",
			want:  "x2",
		},
		{
			name:  "NFKC正規化: 全角英数",
			input: "ＡＢＣ１２３",
			want:  "ABC123",
		},
		{
			name:  "ゼロ幅スペースの除去",
			input: "pass​word",
			want:  "password",
		},
		{
			name:  "ゼロ幅非接合子と方向マークの除去",
			input: "a‌b‎c‏d",
			want:  "abcd",
		},
		{
			name:  "双方向制御文字の除去",
			input: "a‪b‫c‬d‭e‮f",
			want:  "abcdef",
		},
		{
			name:  "前後の空白を除去",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "空白のみの入力は空文字列",
			input: " \t\n ",
			want:  "",
		},
		{
			name:  "空文字列はそのまま",
			input: "",
			want:  "",
		},
		{
			name:  "通常のテキストは変更されない",
			input: "こんにちは World 123",
			want:  "こんにちは World 123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeInput(tt.input); got != tt.want {
				t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeInput_Idempotent は同一入力への再適用が結果を変えないことを検証する。
func TestSanitizeInput_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello\x00World",
		"x² + y³",
		"  \u200b mixed \u202e input \x1f ",
		"plain text",
	}

	for _, input := range inputs {
		once := SanitizeInput(input)
		twice := SanitizeInput(once)
		if once != twice {
			t.Errorf("SanitizeInput is not idempotent for %q: first=%q second=%q", input, once, twice)
		}
	}
}
