package envtext

import (
	"strings"
	"testing"
)

func TestFindValueSpan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		want    string
	}{
		{
			name:    "quoted value with inline comment keeps quotes",
			content: `API_KEY="abc 123"  # inline comment`,
			key:     "API_KEY",
			want:    `"abc 123"`,
		},
		{
			name:    "single quotes kept in span",
			content: `PASS='p@ssw0rd#123'`,
			key:     "PASS",
			want:    `'p@ssw0rd#123'`,
		},
		{
			name:    "unquoted value stops at comment",
			content: "PORT=3000 # the port\nHOST=localhost\n",
			key:     "PORT",
			want:    "3000",
		},
		{
			name:    "unquoted trailing spaces trimmed",
			content: "NAME=value   \n",
			key:     "NAME",
			want:    "value",
		},
		{
			name:    "export prefix skipped",
			content: "export PATH_EXTRA=/usr/local/bin\n",
			key:     "PATH_EXTRA",
			want:    "/usr/local/bin",
		},
		{
			name:    "crlf line endings",
			content: "A=1\r\nB=2\r\n",
			key:     "B",
			want:    "2",
		},
		{
			name:    "escaped hash stays in value",
			content: `TAG=a\#b`,
			key:     "TAG",
			want:    `a\#b`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := FindValueSpan(tt.content, []string{tt.key})
			if err != nil {
				t.Fatalf("FindValueSpan() error: %v", err)
			}
			if got := span.Slice(tt.content); got != tt.want {
				t.Errorf("span = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindValueSpanPathArity(t *testing.T) {
	if _, err := FindValueSpan("A=1\n", []string{"A", "B"}); err == nil {
		t.Error("two-segment path accepted")
	}
	if _, err := FindValueSpan("A=1\n", nil); err == nil {
		t.Error("empty path accepted")
	}
}

func TestValidateSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMsg  string
		wantLine int
	}{
		{"missing separator", "JUST_A_KEY\n", "missing '='", 1},
		{"missing separator later line", "A=1\nBROKEN\n", "missing '='", 2},
		{"unterminated quote", `KEY="unclosed`, "unterminated quoted value", 1},
		{"duplicate key", "FOO=1\nBAR=2\nFOO=3\n", "duplicate key 'FOO'", 3},
		{"duplicate with export", "FOO=1\nexport FOO=2\n", "duplicate key 'FOO'", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := firstPositionedError(tt.content)
			if err == nil {
				t.Fatal("firstPositionedError() = nil, want error")
			}
			if !strings.Contains(err.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", err.Message, tt.wantMsg)
			}
			if err.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", err.Line, tt.wantLine)
			}
			if err.Column < 1 {
				t.Errorf("column %d not 1-based", err.Column)
			}
		})
	}
}

func TestValidateSyntaxAccepts(t *testing.T) {
	content := "# comment\n\nA=1\nexport B=\"two\"\nC='three' # tail\n"
	if err := ValidateSyntax(content); err != nil {
		t.Errorf("valid file rejected: %v", err)
	}
}

func TestValidateMulti(t *testing.T) {
	r := ValidateMulti("A=1\nB=2\n")
	if !r.Valid || len(r.Errors) != 0 {
		t.Fatalf("valid file misreported: %+v", r)
	}
	r = ValidateMulti("FOO=1\nFOO=2\n")
	if r.Valid || len(r.Errors) != 1 || r.Summary == nil {
		t.Fatalf("duplicate not reported as single error: %+v", r)
	}
}

func TestNeedsQuotingAndQuote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"plain", false},
		{"has space", true},
		{"has#hash", true},
		{"has\ttab", true},
		{"has\nnewline", true},
	}
	for _, tt := range tests {
		if got := NeedsQuoting(tt.in); got != tt.want {
			t.Errorf("NeedsQuoting(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Quote("a \"b\"\nc"); got != `"a \"b\"\nc"` {
		t.Errorf("Quote() = %q", got)
	}
}
