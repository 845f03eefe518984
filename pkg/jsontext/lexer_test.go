package jsontext

import "testing"

func TestLexTokenKinds(t *testing.T) {
	content := `{"a": [1, true, false, null, -2.5e3]}`
	tokens, err := Lex(content)
	if err != nil {
		t.Fatalf("Lex() error: %v", err)
	}
	want := []Kind{LBrace, StringLit, Colon, LBrack, NumberLit, Comma, True, Comma, False, Comma, Null, Comma, NumberLit, RBrack, RBrace}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, tokens[i].Kind, k)
		}
	}
}

func TestLexSpansAreExact(t *testing.T) {
	content := `{"key": "val\"ue"}`
	tokens, err := Lex(content)
	if err != nil {
		t.Fatalf("Lex() error: %v", err)
	}
	// tokens: { "key" : "val\"ue" }
	if got := tokens[1].Span.Slice(content); got != `"key"` {
		t.Errorf("key span = %q", got)
	}
	if got := tokens[3].Span.Slice(content); got != `"val\"ue"` {
		t.Errorf("escaped string span = %q", got)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unterminated string", `{"a": "boom`},
		{"raw newline in string", "{\"a\": \"bo\nom\"}"},
		{"unexpected byte", `{"a": @}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Lex(tt.content); err == nil {
				t.Error("Lex() succeeded, want error")
			}
		})
	}
}

func TestLexLenientRecovers(t *testing.T) {
	content := "{\"a\": \"oops,\n\"b\": 1}"
	tokens, lexErrors := LexLenient(content, 0)
	if len(lexErrors) != 1 {
		t.Fatalf("got %d lex errors, want 1: %+v", len(lexErrors), lexErrors)
	}
	if lexErrors[0].Code != "json.unterminated_string" {
		t.Errorf("code = %q", lexErrors[0].Code)
	}
	// Scanning resumes after the broken string; the rest still tokenizes.
	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	found := false
	for i := 0; i+1 < len(kinds); i++ {
		if kinds[i] == StringLit && kinds[i+1] == Colon {
			found = true
		}
	}
	if !found {
		t.Errorf("no key token recovered after error: %v", kinds)
	}
}

func TestLexLenientBudget(t *testing.T) {
	content := `@@@@@`
	_, lexErrors := LexLenient(content, 2)
	if len(lexErrors) != 2 {
		t.Errorf("budget not honored: got %d errors", len(lexErrors))
	}
	_, lexErrors = LexLenient(content, 0)
	if len(lexErrors) != 5 {
		t.Errorf("unlimited budget collected %d errors, want 5", len(lexErrors))
	}
}

func TestValidateCoarse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid object", `{"a": 1}`, false},
		{"valid nested", `{"a": {"b": [1, 2]}}`, false},
		{"mismatched brace", `[1, 2}`, true},
		{"mismatched bracket", `{"a": 1]`, true},
		{"unclosed", `{"a": [1, 2`, true},
		{"key without colon", `{"a" 1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.content)
			if err != nil {
				t.Fatalf("Lex() error: %v", err)
			}
			if err := Validate(tokens); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
