// Package routing parses route templates and matches request paths against them.
package routing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	scerrors "github.com/toyz/scaffold/internal/errors"
)

// PartType represents the type of a template part
type PartType int

const (
	StaticPart PartType = iota
	ParameterPart
)

// Part represents a single part of a template segment
type Part struct {
	Type  PartType
	Value string // For static parts: the literal text, for parameters: the parameter name
}

// Segment is the text between two slashes. A segment holds one or more parts,
// e.g. "{filename}.js" is a parameter part followed by a static part.
type Segment struct {
	Parts []Part
}

// Static reports whether the segment is a single literal
func (s Segment) Static() bool {
	return len(s.Parts) == 1 && s.Parts[0].Type == StaticPart
}

type templateAST struct {
	Segments []*segmentAST `parser:"( @@ ( '/' @@ )* )?"`
}

type segmentAST struct {
	Parts []*partAST `parser:"@@+"`
}

type partAST struct {
	Param *string `parser:"  '{' @Ident '}'"`
	Text  *string `parser:"| @(Ident | Literal)"`
}

var templateParser = participle.MustBuild[templateAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Open", Pattern: `\{`},
		{Name: "Close", Pattern: `\}`},
		{Name: "Slash", Pattern: `/`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Literal", Pattern: `[^{}/]+`},
	})),
)

// Template is a parsed route template such as "Movie/{id}/{action}"
type Template struct {
	raw      string
	segments []Segment
	params   []string
}

// Parse parses a route template. Leading and trailing slashes are ignored.
func Parse(raw string) (*Template, error) {
	trimmed := strings.Trim(raw, "/")
	t := &Template{raw: trimmed}
	if trimmed == "" {
		return t, nil
	}

	ast, err := templateParser.ParseString(raw, trimmed)
	if err != nil {
		return nil, scerrors.WrapTemplateError(raw, err)
	}

	seen := make(map[string]bool)
	for _, seg := range ast.Segments {
		var segment Segment
		for _, p := range seg.Parts {
			if p.Param != nil {
				name := *p.Param
				if seen[strings.ToLower(name)] {
					return nil, scerrors.TemplateError(raw, fmt.Sprintf("parameter '%s' appears more than once", name))
				}
				if n := len(segment.Parts); n > 0 && segment.Parts[n-1].Type == ParameterPart {
					return nil, scerrors.TemplateError(raw, "adjacent parameters need a literal separator")
				}
				seen[strings.ToLower(name)] = true
				segment.Parts = append(segment.Parts, Part{Type: ParameterPart, Value: name})
				t.params = append(t.params, name)
				continue
			}
			// Merge consecutive literal tokens into one static part
			if n := len(segment.Parts); n > 0 && segment.Parts[n-1].Type == StaticPart {
				segment.Parts[n-1].Value += *p.Text
			} else {
				segment.Parts = append(segment.Parts, Part{Type: StaticPart, Value: *p.Text})
			}
		}
		t.segments = append(t.segments, segment)
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for package-level templates.
func MustParse(raw string) *Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Raw returns the template text without surrounding slashes
func (t *Template) Raw() string {
	return t.raw
}

// String implements fmt.Stringer
func (t *Template) String() string {
	return "/" + t.raw
}

// Segments returns the parsed segments
func (t *Template) Segments() []Segment {
	return t.segments
}

// Parameters returns the parameter names in declaration order
func (t *Template) Parameters() []string {
	return append([]string(nil), t.params...)
}

// HasParameter reports whether the template declares the named parameter
func (t *Template) HasParameter(name string) bool {
	for _, p := range t.params {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// Match matches a request path against the template. Literals compare
// case-insensitively; captured values keep the request's casing.
func (t *Template) Match(path string) (map[string]string, bool) {
	path = strings.Trim(path, "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}
	if len(parts) != len(t.segments) {
		return nil, false
	}

	values := make(map[string]string, len(t.params))
	for i, seg := range t.segments {
		if !matchSegment(seg, parts[i], values) {
			return nil, false
		}
	}
	return values, true
}

func matchSegment(seg Segment, text string, values map[string]string) bool {
	if seg.Static() {
		return strings.EqualFold(seg.Parts[0].Value, text)
	}

	rest := text
	for i, part := range seg.Parts {
		switch part.Type {
		case StaticPart:
			if len(rest) < len(part.Value) || !strings.EqualFold(rest[:len(part.Value)], part.Value) {
				return false
			}
			rest = rest[len(part.Value):]
		case ParameterPart:
			end := len(rest)
			if i+1 < len(seg.Parts) {
				next := strings.ToLower(seg.Parts[i+1].Value)
				// the parameter must capture at least one character
				idx := strings.Index(strings.ToLower(rest[min(1, len(rest)):]), next)
				if idx < 0 {
					return false
				}
				end = idx + min(1, len(rest))
			}
			if end == 0 {
				return false
			}
			values[part.Value] = rest[:end]
			rest = rest[end:]
		}
	}
	return rest == ""
}

// Expand substitutes values into the template. Every parameter needs a
// non-empty value; values that are not template parameters are appended as
// a query string in key order.
func (t *Template) Expand(values map[string]string) (string, error) {
	used := make(map[string]bool, len(t.params))
	segments := make([]string, 0, len(t.segments))

	for _, seg := range t.segments {
		var b strings.Builder
		for _, part := range seg.Parts {
			if part.Type == StaticPart {
				b.WriteString(part.Value)
				continue
			}
			value, key := lookupFold(values, part.Value)
			if value == "" {
				return "", scerrors.TemplateError(t.raw, fmt.Sprintf("no value supplied for parameter '%s'", part.Value))
			}
			used[key] = true
			b.WriteString(url.PathEscape(value))
		}
		segments = append(segments, b.String())
	}

	result := "/" + strings.Join(segments, "/")

	query := url.Values{}
	for key, value := range values {
		if !used[key] && value != "" {
			query.Set(key, value)
		}
	}
	if len(query) > 0 {
		result += "?" + query.Encode()
	}
	return result, nil
}

func lookupFold(values map[string]string, name string) (string, string) {
	if v, ok := values[name]; ok {
		return v, name
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v, k
		}
	}
	return "", ""
}
