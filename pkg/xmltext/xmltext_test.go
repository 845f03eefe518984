package xmltext

import (
	"io"
	"strings"
	"testing"

	"github.com/confkit/confkit/pkg/diag"
)

func TestFindValueSpanAttributes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    []string
		want    string
	}{
		{
			name:    "attribute on self-closing element",
			content: `<connection host="127.0.0.1" port="8080"/>`,
			path:    []string{"connection", "@host"},
			want:    "127.0.0.1",
		},
		{
			name:    "second attribute",
			content: `<connection host="127.0.0.1" port="8080"/>`,
			path:    []string{"connection", "@port"},
			want:    "8080",
		},
		{
			name:    "single-quoted attribute",
			content: `<db name='users'></db>`,
			path:    []string{"db", "@name"},
			want:    "users",
		},
		{
			name:    "nested element attribute",
			content: `<config><server port="9000"></server></config>`,
			path:    []string{"config", "server", "@port"},
			want:    "9000",
		},
		{
			name:    "namespace prefix is stripped",
			content: `<app:config app:mode="dev"/>`,
			path:    []string{"config", "@mode"},
			want:    "dev",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := FindValueSpan(tt.content, tt.path)
			if err != nil {
				t.Fatalf("FindValueSpan: %v", err)
			}
			if got := sp.Slice(tt.content); got != tt.want {
				t.Errorf("span = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindValueSpanText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    []string
		want    string
	}{
		{
			name:    "element text",
			content: `<config><host>localhost</host></config>`,
			path:    []string{"config", "host"},
			want:    "localhost",
		},
		{
			name:    "surrounding whitespace excluded",
			content: "<config><host>\n  localhost  \n</host></config>",
			path:    []string{"config", "host"},
			want:    "localhost",
		},
		{
			name:    "sibling elements resolve independently",
			content: `<cfg><a>1</a><b>2</b></cfg>`,
			path:    []string{"cfg", "b"},
			want:    "2",
		},
		{
			name:    "comment before text is skipped",
			content: `<cfg><a><!-- note -->42</a></cfg>`,
			path:    []string{"cfg", "a"},
			want:    "42",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := FindValueSpan(tt.content, tt.path)
			if err != nil {
				t.Fatalf("FindValueSpan: %v", err)
			}
			if got := sp.Slice(tt.content); got != tt.want {
				t.Errorf("span = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindValueSpanErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    []string
		wantSub string
	}{
		{
			name:    "missing attribute",
			content: `<connection host="127.0.0.1"/>`,
			path:    []string{"connection", "@port"},
			wantSub: `attribute "port" not found`,
		},
		{
			name:    "missing element",
			content: `<config><host>x</host></config>`,
			path:    []string{"config", "timeout"},
			wantSub: "path not found",
		},
		{
			name:    "structure-only children have no text",
			content: `<config><db><host>x</host></db></config>`,
			path:    []string{"config", "db"},
			wantSub: "path not found",
		},
		{
			name:    "empty path",
			content: `<a/>`,
			path:    nil,
			wantSub: "path must not be empty",
		},
		{
			name:    "bare attribute segment",
			content: `<a b="c"/>`,
			path:    []string{"@b"},
			wantSub: "enclosing element",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindValueSpan(tt.content, tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidateSyntax(t *testing.T) {
	valid := []string{
		`<a/>`,
		`<a></a>`,
		`<?xml version="1.0"?><root><leaf x="1"/>text</root>`,
		`<r><!-- comment --><![CDATA[<raw>]]></r>`,
	}
	for _, content := range valid {
		if err := ValidateSyntax(content); err != nil {
			t.Errorf("ValidateSyntax(%q) = %v, want nil", content, err)
		}
	}

	tests := []struct {
		name     string
		content  string
		wantSub  string
		wantLine int
	}{
		{
			name:     "mismatched closing tag",
			content:  "<a><b></a>",
			wantSub:  "expected </b>",
			wantLine: 1,
		},
		{
			name:     "unclosed tags",
			content:  "<a>\n<b>",
			wantSub:  "unclosed tags: a, b",
			wantLine: 2,
		},
		{
			name:     "unterminated attribute quote",
			content:  "<a x=\"oops/>",
			wantSub:  "unterminated attribute quote",
			wantLine: 1,
		},
		{
			name:     "stray closing tag",
			content:  "</a>",
			wantSub:  "no open element",
			wantLine: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyntax(tt.content)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
			var pe *diag.PositionedError
			if ok := asPositioned(err, &pe); !ok {
				t.Fatalf("error is %T, want *diag.PositionedError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func asPositioned(err error, out **diag.PositionedError) bool {
	pe, ok := err.(*diag.PositionedError)
	if ok {
		*out = pe
	}
	return ok
}

func TestValidateMulti(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		res := ValidateMulti(`<root><leaf a="1">text</leaf></root>`, 10)
		if !res.Valid || len(res.Errors) != 0 {
			t.Fatalf("got %+v, want valid", res)
		}
	})

	t.Run("unterminated quote classified", func(t *testing.T) {
		res := ValidateMulti("<a x=\"oops>\n<b/>", 10)
		if res.Valid {
			t.Fatal("expected invalid result")
		}
		if res.Errors[0].Code != "xml.unterminated_quote" {
			t.Errorf("code = %q, want xml.unterminated_quote", res.Errors[0].Code)
		}
		if res.Summary == nil || res.Summary.Message != res.Errors[0].Message {
			t.Errorf("summary should be the first error, got %+v", res.Summary)
		}
	})

	t.Run("mismatched tag classified", func(t *testing.T) {
		res := ValidateMulti("<a><b></a>", 10)
		if res.Valid {
			t.Fatal("expected invalid result")
		}
		if res.Errors[0].Code != "xml.mismatched_tag" {
			t.Errorf("code = %q, want xml.mismatched_tag", res.Errors[0].Code)
		}
	})

	t.Run("unclosed tags reported innermost first", func(t *testing.T) {
		res := ValidateMulti("<a><b>", 10)
		if len(res.Errors) != 2 {
			t.Fatalf("got %d errors, want 2: %+v", len(res.Errors), res.Errors)
		}
		if !strings.Contains(res.Errors[0].Message, "<b>") {
			t.Errorf("first error = %q, want the innermost tag", res.Errors[0].Message)
		}
		for _, e := range res.Errors {
			if e.Code != "xml.unclosed_tag" {
				t.Errorf("code = %q, want xml.unclosed_tag", e.Code)
			}
		}
	})

	t.Run("recovery finds multiple lexical errors", func(t *testing.T) {
		content := "<a x=\"one>\n<b y=\"two>\n"
		res := ValidateMulti(content, 10)
		if len(res.Errors) < 2 {
			t.Fatalf("got %d errors, want at least 2: %+v", len(res.Errors), res.Errors)
		}
	})

	t.Run("budget bounds the error list", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 20; i++ {
			sb.WriteString("<t>")
		}
		res := ValidateMulti(sb.String(), 3)
		if len(res.Errors) != 3 {
			t.Errorf("got %d errors, want 3", len(res.Errors))
		}
	})

	t.Run("oversized input degrades to single error", func(t *testing.T) {
		content := "<a><b></a>" + strings.Repeat(" ", ByteLimit)
		res := ValidateMulti(content, 10)
		if res.Valid {
			t.Fatal("expected invalid result")
		}
		if len(res.Errors) != 1 {
			t.Errorf("got %d errors, want 1 in degraded mode", len(res.Errors))
		}
	})
}

func TestTokenizerEvents(t *testing.T) {
	content := `<?xml version="1.0"?><r a="1"><!-- c --><![CDATA[<x>]]>hi</r>`
	z := NewTokenizer(content)
	var kinds []TokenKind
	for {
		tok, err := z.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, tok.Kind)
	}
	want := []TokenKind{ProcInst, ElementStart, Attribute, ElementEndOpen, Comment, CData, Text, ElementClose}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", kinds, want)
		}
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a&b`, `a&amp;b`},
		{`<tag>`, `&lt;tag&gt;`},
		{`he said "hi"`, `he said &quot;hi&quot;`},
		{`it's`, `it&apos;s`},
		{`plain`, `plain`},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
