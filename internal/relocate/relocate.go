// Package relocate reorders two marker-delimited blocks of lines inside a
// text document while keeping every other line in place.
package relocate

import (
	"fmt"
	"strings"
)

// NotFound is the resolved index of a marker absent from the document.
const NotFound = -1

// Marker is a literal, case-sensitive substring identifying a block boundary.
type Marker string

// Block is bounded by the first line containing Start and the first line
// containing End, both inclusive.
type Block struct {
	Start Marker `yaml:"start" koanf:"start"`
	End   Marker `yaml:"end" koanf:"end"`
}

// Validate rejects empty markers, which would match every line.
func (b Block) Validate() error {
	if b.Start == "" || b.End == "" {
		return ErrEmptyMarker
	}
	return nil
}

// Order is the desired relative order of the two blocks.
type Order string

const (
	ABeforeB Order = "a-before-b"
	BBeforeA Order = "b-before-a"
)

// ParseOrder accepts the canonical order names.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case ABeforeB, BBeforeA:
		return Order(s), nil
	}
	return "", fmt.Errorf("invalid order %q: must be %s or %s", s, ABeforeB, BBeforeA)
}

// Role names one of the four markers.
type Role string

const (
	RoleStartA Role = "start-a"
	RoleEndA   Role = "end-a"
	RoleStartB Role = "start-b"
	RoleEndB   Role = "end-b"
)

var roles = []Role{RoleStartA, RoleEndA, RoleStartB, RoleEndB}

// Positions holds the zero-based line index of each marker, or NotFound.
type Positions struct {
	StartA, EndA int
	StartB, EndB int
}

func (p Positions) get(r Role) int {
	switch r {
	case RoleStartA:
		return p.StartA
	case RoleEndA:
		return p.EndA
	case RoleStartB:
		return p.StartB
	default:
		return p.EndB
	}
}

// String reports positions as 1-based line numbers.
func (p Positions) String() string {
	line := func(i int) string {
		if i == NotFound {
			return "?"
		}
		return fmt.Sprint(i + 1)
	}
	return fmt.Sprintf("A: lines %s-%s, B: lines %s-%s",
		line(p.StartA), line(p.EndA), line(p.StartB), line(p.EndB))
}

// Resolve scans lines once and records the first line containing each
// marker.
func Resolve(lines []string, a, b Block) Positions {
	p := Positions{StartA: NotFound, EndA: NotFound, StartB: NotFound, EndB: NotFound}
	find := func(pos *int, m Marker, line string, i int) {
		if *pos == NotFound && m != "" && strings.Contains(line, string(m)) {
			*pos = i
		}
	}
	for i, line := range lines {
		find(&p.StartA, a.Start, line, i)
		find(&p.EndA, a.End, line, i)
		find(&p.StartB, b.Start, line, i)
		find(&p.EndB, b.End, line, i)
	}
	return p
}

// Status describes the terminal state of a successful relocation.
type Status string

const (
	StatusReordered      Status = "reordered"
	StatusAlreadyOrdered Status = "already-ordered"
)

// Result is the outcome of Relocate.
type Result struct {
	Positions Positions
	Changed   bool
	Lines     []string
}

// Status reports whether the blocks were swapped or already in order.
func (r Result) Status() Status {
	if r.Changed {
		return StatusReordered
	}
	return StatusAlreadyOrdered
}

// Relocate returns lines with blocks a and b arranged in the given order.
// Lines outside both blocks keep their content and relative position, and
// the lines between the blocks stay between them. When the blocks are
// already in order the input slice is returned unchanged. An unterminated
// last line that moves away from the end takes the line terminator used by
// the rest of the input, and the new last line gives its terminator up.
func Relocate(lines []string, a, b Block, order Order) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, fmt.Errorf("block a: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Result{}, fmt.Errorf("block b: %w", err)
	}
	if _, err := ParseOrder(string(order)); err != nil {
		return Result{}, err
	}

	pos := Resolve(lines, a, b)
	res := Result{Positions: pos, Lines: lines}
	if err := check(pos, a, b); err != nil {
		return res, err
	}

	aFirst := pos.StartA < pos.StartB
	if aFirst == (order == ABeforeB) {
		return res, nil
	}

	first, firstEnd := pos.StartA, pos.EndA
	second, secondEnd := pos.StartB, pos.EndB
	if !aFirst {
		first, firstEnd, second, secondEnd = second, secondEnd, first, firstEnd
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:first]...)
	out = append(out, lines[second:secondEnd+1]...)
	out = append(out, lines[firstEnd+1:second]...)
	out = append(out, lines[first:firstEnd+1]...)
	out = append(out, lines[secondEnd+1:]...)
	keepFinalLine(lines, out)

	res.Lines = out
	res.Changed = true
	return res, nil
}

func keepFinalLine(in, out []string) {
	n := len(in)
	if n == 0 || lineEnding(in[n-1]) != "" || out[n-1] == in[n-1] {
		return
	}
	eol := ""
	for _, l := range in {
		if eol = lineEnding(l); eol != "" {
			break
		}
	}
	if eol == "" {
		return
	}
	for i := range out[:n-1] {
		if out[i] == in[n-1] {
			out[i] += eol
			break
		}
	}
	out[n-1] = strings.TrimSuffix(out[n-1], lineEnding(out[n-1]))
}

func lineEnding(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

func check(pos Positions, a, b Block) error {
	text := map[Role]Marker{
		RoleStartA: a.Start, RoleEndA: a.End,
		RoleStartB: b.Start, RoleEndB: b.End,
	}
	var missing []Role
	for _, r := range roles {
		if pos.get(r) == NotFound {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &MarkerNotFoundError{Markers: missing, Text: text}
	}

	switch {
	case pos.EndA < pos.StartA:
		return &InvalidOrderingError{Positions: pos, Reason: "block a ends before it starts"}
	case pos.EndB < pos.StartB:
		return &InvalidOrderingError{Positions: pos, Reason: "block b ends before it starts"}
	case pos.EndA >= pos.StartB && pos.EndB >= pos.StartA:
		return &InvalidOrderingError{Positions: pos, Reason: "blocks overlap"}
	}
	return nil
}
