package domain

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

type segmentKind int

const (
	literalSegment segmentKind = iota
	placeholderSegment
)

type segment struct {
	kind   segmentKind
	text   string // literal text, or the placeholder name
	braced bool   // placeholder was written as ${name}
}

// placeholderText returns the placeholder in its original spelling, used
// when a placeholder has no value and passes through verbatim.
func (s segment) placeholderText() string {
	if s.braced {
		return "${" + s.text + "}"
	}

	return "$" + s.text
}

// Template is an archive name template with $name style placeholders.
// "$$" renders a literal dollar sign, "${name}" delimits a placeholder
// inside adjacent word characters, and a dollar sign not followed by a
// placeholder name stays literal.
type Template struct {
	raw      string
	segments []segment
}

// ParseTemplate tokenizes a template. It never fails: malformed placeholder
// syntax degrades to literal text.
func ParseTemplate(text string) *Template {
	t := &Template{raw: text}

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			t.segments = append(t.segments, segment{kind: literalSegment, text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 >= len(text) {
			literal.WriteByte(text[i])
			i++
			continue
		}

		switch next := text[i+1]; {
		case next == '$':
			literal.WriteByte('$')
			i += 2

		case next == '{':
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 || !isPlaceholderName(text[i+2:i+2+end]) {
				literal.WriteByte('$')
				i++
				continue
			}

			flush()
			t.segments = append(t.segments, segment{kind: placeholderSegment, text: text[i+2 : i+2+end], braced: true})
			i += 2 + end + 1

		case isNameStart(next):
			j := i + 1
			for j < len(text) && isNameByte(text[j]) {
				j++
			}

			flush()
			t.segments = append(t.segments, segment{kind: placeholderSegment, text: text[i+1 : j]})
			i = j

		default:
			literal.WriteByte('$')
			i++
		}
	}
	flush()

	return t
}

func (t *Template) String() string {
	return t.raw
}

// HasPlaceholder reports whether the template refers to the named placeholder.
func (t *Template) HasPlaceholder(name string) bool {
	for _, seg := range t.segments {
		if seg.kind == placeholderSegment && seg.text == name {
			return true
		}
	}

	return false
}

// Render substitutes the given placeholder values. Placeholders without a
// value stay in the output verbatim.
func (t *Template) Render(values map[string]string) string {
	var out strings.Builder

	for _, seg := range t.segments {
		if seg.kind == literalSegment {
			out.WriteString(seg.text)
			continue
		}

		if value, ok := values[seg.text]; ok {
			out.WriteString(value)
		} else {
			out.WriteString(seg.placeholderText())
		}
	}

	return out.String()
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}

func isPlaceholderName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}

	return true
}

// Matcher recognizes archive names produced from a target template and
// recovers the date portion. Literal template text must match exactly,
// $name matches the job's name or any of its aliases, and the first $date
// placeholder captures the date.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles a matcher. Names may be empty, in which case $name is
// taken to have rendered to the empty string.
func NewMatcher(t *Template, names []string) (*Matcher, error) {
	var pattern strings.Builder
	pattern.WriteString(`^`)

	captured := false
	for _, seg := range t.segments {
		switch {
		case seg.kind == literalSegment:
			pattern.WriteString(regexp.QuoteMeta(seg.text))

		case seg.text == "date":
			if captured {
				pattern.WriteString(`(?:.*?)`)
				continue
			}
			pattern.WriteString(`(.*?)`)
			captured = true

		case seg.text == "name":
			quoted := make([]string, 0, len(names))
			for _, name := range names {
				quoted = append(quoted, regexp.QuoteMeta(name))
			}
			if len(quoted) > 0 {
				pattern.WriteString(`(?:` + strings.Join(quoted, `|`) + `)`)
			}

		default:
			// unknown placeholders render verbatim, so they match verbatim
			pattern.WriteString(regexp.QuoteMeta(seg.placeholderText()))
		}
	}
	pattern.WriteString(`$`)

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile matcher for template %q", t.raw)
	}

	return &Matcher{re: re}, nil
}

// Extract returns the date portion of an archive name and whether the name
// was produced from the matcher's template at all.
func (m *Matcher) Extract(name string) (string, bool) {
	groups := m.re.FindStringSubmatch(name)
	if len(groups) < 2 {
		return "", false
	}

	return groups[1], true
}
