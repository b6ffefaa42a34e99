package lightschema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Errors is the failure payload of Parse. Its shape mirrors the schema:
// Messages for leaves and sequences, Fields for objects.
type Errors interface {
	error
	// Issues flattens the payload into path-addressed entries.
	Issues() Issues
	isErrors()
}

// Messages is an ordered list of human-readable failure messages.
type Messages []string

func (Messages) isErrors() {}

// Error joins the messages with "; ".
func (m Messages) Error() string { return strings.Join(m, "; ") }

// Issues returns one root-level Issue per message.
func (m Messages) Issues() Issues { return m.issuesAt(rootPointer) }

func (m Messages) issuesAt(p pointer) Issues {
	out := make(Issues, 0, len(m))
	for _, msg := range m {
		out = append(out, Issue{Path: p.String(), Message: msg})
	}
	return out
}

// Fields maps failing property names to their own payloads. Passing
// properties are absent.
type Fields map[string]Errors

func (Fields) isErrors() {}

// Error summarizes the flattened issues.
func (f Fields) Error() string { return f.Issues().Error() }

// Issues flattens nested payloads in sorted property order.
func (f Fields) Issues() Issues { return f.issuesAt(rootPointer) }

func (f Fields) issuesAt(p pointer) Issues {
	var out Issues
	for _, k := range slices.Sorted(maps.Keys(f)) {
		out = AppendIssues(out, issuesAt(f[k], p.Field(k))...)
	}
	return out
}

func issuesAt(e Errors, p pointer) Issues {
	switch t := e.(type) {
	case Messages:
		return t.issuesAt(p)
	case Fields:
		return t.issuesAt(p)
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("lightschema: unsupported error payload %T", e))
	}
}

// flatten concatenates payloads for sequence-like aggregation. Keyed
// payloads are rendered as "<pointer>: <message>".
func flatten(parts []Errors) Messages {
	var out Messages
	for _, p := range parts {
		switch t := p.(type) {
		case Messages:
			out = append(out, t...)
		case Fields:
			for _, it := range t.Issues() {
				out = append(out, it.Path+": "+it.Message)
			}
		}
	}
	return out
}

// Issue is a single flattened failure.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/price).
	Message string `json:"message"`
}

// Issues is a collection of failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Message, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error. Errors payloads are flattened.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var m Messages
	if errors.As(err, &m) {
		return m.Issues(), true
	}
	var f Fields
	if errors.As(err, &f) {
		return f.Issues(), true
	}
	return nil, false
}

// pointer builds RFC 6901 JSON Pointers.
type pointer struct{ parts []string }

var rootPointer = pointer{}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p pointer) Field(name string) pointer {
	return pointer{parts: append(slices.Clip(p.parts), pointerEscaper.Replace(name))}
}

func (p pointer) String() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}
