package clipper

import "fmt"

// Kind tags a transcript line with its display category.
type Kind int

const (
	KindOutput Kind = iota
	KindInput
	KindError
	KindWarning
)

var kindNames = [...]string{
	KindOutput:  "output",
	KindInput:   "input",
	KindError:   "error",
	KindWarning: "warning",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText encodes the kind by name so events stay readable on the wire.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", b)
}

// Line is one line of dispatcher output.
type Line struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// Outcome is what Dispatch returns: at least one line, plus an optional
// request for the host to clear its transcript.
type Outcome struct {
	Lines []Line
	Clear bool
}

// Texts returns the raw text of every line.
func (o Outcome) Texts() []string {
	out := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		out[i] = l.Text
	}
	return out
}

// IsError reports whether the outcome is the single-line unknown command/flag error.
func (o Outcome) IsError() bool {
	return len(o.Lines) == 1 && o.Lines[0].Kind == KindError
}

// report accumulates lines for a handler.
type report struct {
	lines []Line
}

func (r *report) add(texts ...string) *report {
	for _, t := range texts {
		r.lines = append(r.lines, Line{Text: t})
	}
	return r
}

func (r *report) addf(format string, a ...any) *report {
	r.lines = append(r.lines, Line{Text: fmt.Sprintf(format, a...)})
	return r
}

func (r *report) warn(text string) *report {
	r.lines = append(r.lines, Line{Text: text, Kind: KindWarning})
	return r
}

// addIf appends text only when cond holds. Used for optional bullet lines.
func (r *report) addIf(cond bool, text string) *report {
	if cond {
		r.add(text)
	}
	return r
}

func (r *report) outcome() Outcome {
	return Outcome{Lines: r.lines}
}

func single(kind Kind, format string, a ...any) Outcome {
	return Outcome{Lines: []Line{{Text: fmt.Sprintf(format, a...), Kind: kind}}}
}
