// Package schema validates JSON documents against JSON Schemas and
// maps every validation error back to a byte span in the instance
// text, so callers can point at the offending value instead of quoting
// a pointer.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/confkit/confkit/pkg/jsontext"
	"github.com/confkit/confkit/pkg/textspan"
)

const (
	defaultMaxErrors = 50
	maxErrorsCap     = 200
)

// Position locates an error in the instance document: 1-based line and
// column plus the half-open byte span of the value (or the nearest
// existing ancestor when the value itself is absent).
type Position struct {
	Line   int
	Column int
	Start  int
	End    int
}

// ErrorDescriptor is one flattened validation error. Keyword is the
// failing schema keyword ("type", "required", ...), or "syntax" when
// the instance is not valid JSON, or "schema" when the schema itself
// could not be used. Position is nil when positions were not collected
// or not resolvable.
type ErrorDescriptor struct {
	Message      string
	Keyword      string
	InstancePath string
	SchemaPath   string
	Position     *Position
}

// Outcome is the result of one validation call.
type Outcome struct {
	Valid  bool
	Errors []ErrorDescriptor
}

// Options tunes a validation call. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// MaxErrors bounds the flattened error list. Normalized into
	// 1..=200; 0 means the default of 50.
	MaxErrors int
	// CollectPositions resolves each error's instance pointer to a
	// byte span. Costs one tokenize of the instance per call.
	CollectPositions bool
	// Draft forces a dialect for inline schemas that carry no $schema:
	// "4", "6", "7", "2019-09" or "2020-12". Empty lets the compiler
	// decide.
	Draft string
}

// DefaultOptions returns the options used when the caller passes the
// zero value.
func DefaultOptions() Options {
	return Options{MaxErrors: defaultMaxErrors, CollectPositions: true}
}

func (o Options) normalized() Options {
	if o.MaxErrors <= 0 {
		o.MaxErrors = defaultMaxErrors
	}
	if o.MaxErrors > maxErrorsCap {
		o.MaxErrors = maxErrorsCap
	}
	return o
}

// Registry holds compiled schemas by id. It is safe for concurrent
// use and read-mostly; construct one per host and inject it, there is
// no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{compiled: make(map[string]*jsonschema.Schema)}
}

// Register compiles schemaText and stores it under id, replacing any
// previous registration.
func (r *Registry) Register(id, schemaText string) error {
	sch, err := compile(schemaText, "")
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.compiled[id] = sch
	r.mu.Unlock()
	return nil
}

// Compiled returns the schema registered under id.
func (r *Registry) Compiled(id string) (*jsonschema.Schema, bool) {
	r.mu.RLock()
	sch, ok := r.compiled[id]
	r.mu.RUnlock()
	return sch, ok
}

// ValidateWithID validates content against the schema registered under
// id. An unknown id yields a "schema" descriptor, not a Go error: the
// caller asked a validation question and gets a validation answer.
func (r *Registry) ValidateWithID(content, id string, opts Options) Outcome {
	sch, ok := r.Compiled(id)
	if !ok {
		return schemaIssue(fmt.Sprintf("no schema registered under id %q", id))
	}
	return validate(content, sch, opts.normalized())
}

// ValidateInline compiles schemaText for this single call and
// validates content against it.
func ValidateInline(content, schemaText string, opts Options) Outcome {
	sch, err := compile(schemaText, opts.Draft)
	if err != nil {
		return schemaIssue(err.Error())
	}
	return validate(content, sch, opts.normalized())
}

// compile parses and compiles one schema document.
func compile(schemaText, draft string) (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaText), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if draft != "" {
		d, err := draftByName(draft)
		if err != nil {
			return nil, err
		}
		compiler.DefaultDraft(d)
	}
	const schemaURL = "inline://schema.json"
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

func draftByName(name string) (*jsonschema.Draft, error) {
	switch name {
	case "4":
		return jsonschema.Draft4, nil
	case "6":
		return jsonschema.Draft6, nil
	case "7":
		return jsonschema.Draft7, nil
	case "2019-09":
		return jsonschema.Draft2019, nil
	case "2020-12":
		return jsonschema.Draft2020, nil
	default:
		return nil, fmt.Errorf("unknown schema draft %q", name)
	}
}

func schemaIssue(msg string) Outcome {
	return Outcome{Errors: []ErrorDescriptor{{Message: msg, Keyword: "schema"}}}
}

var englishPrinter = message.NewPrinter(language.English)

func validate(content string, sch *jsonschema.Schema, opts Options) Outcome {
	// the instance must be valid JSON before schema semantics apply
	if pe := jsontext.FirstError(content); pe != nil {
		desc := ErrorDescriptor{Message: pe.Message, Keyword: "syntax"}
		if opts.CollectPositions {
			desc.Position = &Position{
				Line:   pe.Line,
				Column: pe.Column,
				Start:  pe.Span.Start,
				End:    pe.Span.End,
			}
		}
		return Outcome{Errors: []ErrorDescriptor{desc}}
	}

	var instance any
	if err := json.Unmarshal([]byte(content), &instance); err != nil {
		return Outcome{Errors: []ErrorDescriptor{{Message: err.Error(), Keyword: "syntax"}}}
	}

	err := sch.Validate(instance)
	if err == nil {
		return Outcome{Valid: true}
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return schemaIssue(err.Error())
	}

	var locator *spanLocator
	if opts.CollectPositions {
		locator = newSpanLocator(content)
	}

	var descs []ErrorDescriptor
	for _, leaf := range flattenLeaves(ve, opts.MaxErrors) {
		desc := ErrorDescriptor{
			Message:      leaf.ErrorKind.LocalizedString(englishPrinter),
			Keyword:      keywordOf(leaf),
			InstancePath: encodePointer(leaf.InstanceLocation),
			SchemaPath:   "#/" + strings.Join(keywordPath(leaf), "/"),
		}
		if locator != nil {
			desc.Position = locator.locate(leaf.InstanceLocation)
		}
		descs = append(descs, desc)
	}
	return Outcome{Errors: descs}
}

// flattenLeaves walks the cause tree depth-first and returns the leaf
// errors, which carry the actionable keywords; interior nodes only say
// "doesn't validate against subschema".
func flattenLeaves(ve *jsonschema.ValidationError, max int) []*jsonschema.ValidationError {
	var leaves []*jsonschema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(leaves) >= max {
			return
		}
		if len(e.Causes) == 0 {
			leaves = append(leaves, e)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return leaves
}

func keywordPath(e *jsonschema.ValidationError) []string {
	if e.ErrorKind == nil {
		return nil
	}
	return e.ErrorKind.KeywordPath()
}

// keywordOf reduces the keyword path to the failing keyword itself.
func keywordOf(e *jsonschema.ValidationError) string {
	kp := keywordPath(e)
	if len(kp) == 0 {
		return "schema"
	}
	return kp[len(kp)-1]
}

// encodePointer renders instance location segments as an RFC-6901
// pointer, "~" and "/" escaped in that order.
func encodePointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString(s)
	}
	return b.String()
}

// spanLocator resolves instance pointers to byte spans, tokenizing the
// instance once for the whole batch.
type spanLocator struct {
	content  string
	resolver *jsontext.SpanResolver
	index    *textspan.LineIndex
}

func newSpanLocator(content string) *spanLocator {
	resolver, err := jsontext.NewSpanResolver(content)
	if err != nil {
		// the syntax gate ran first, so this is unreachable in
		// practice; degrade to no positions
		return &spanLocator{content: content}
	}
	return &spanLocator{
		content:  content,
		resolver: resolver,
		index:    textspan.NewLineIndex(content),
	}
}

// locate resolves the pointer, retrying with one trailing segment
// removed at a time: a "required" error points at a property that does
// not exist, so the nearest existing ancestor is the best highlight.
// The empty pointer resolves to the whole document.
func (l *spanLocator) locate(segments []string) *Position {
	if l.resolver == nil {
		return nil
	}
	for n := len(segments); n >= 0; n-- {
		sp, err := l.resolver.SpanForPointer(encodePointer(segments[:n]))
		if err != nil {
			continue
		}
		line, col := l.index.LineCol(sp.Start)
		return &Position{Line: line, Column: col, Start: sp.Start, End: sp.End}
	}
	return nil
}
