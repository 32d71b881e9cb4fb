package extract

import (
	"fmt"
	"strconv"
)

// Value is a decoded metric literal: a number or a bracketed sequence of
// values.
type Value struct {
	num   float64
	items []Value
	list  bool
}

func Number(f float64) Value {
	return Value{num: f}
}

func List(items ...Value) Value {
	return Value{items: items, list: true}
}

func (v Value) IsList() bool { return v.list }

// Float returns the number held by a scalar value.
func (v Value) Float() (float64, bool) {
	if v.list {
		return 0, false
	}
	return v.num, true
}

func (v Value) Items() []Value { return v.items }

// Floats flattens a one-level sequence of numbers.
func (v Value) Floats() ([]float64, bool) {
	if !v.list {
		return nil, false
	}
	out := make([]float64, 0, len(v.items))
	for _, item := range v.items {
		f, ok := item.Float()
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func (v Value) String() string {
	if !v.list {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	b := []byte{'['}
	for i, item := range v.items {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, item.String()...)
	}
	return string(append(b, ']'))
}

// A LiteralError reports where a literal stopped being decodable.
type LiteralError struct {
	Offset int
	Msg    string
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// ParseLiteral decodes signed decimal numbers and arbitrarily nested
// bracketed sequences of them. Surrounding whitespace is allowed; anything
// else is an error.
func ParseLiteral(s string) (Value, error) {
	p := &literalParser{s: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return Value{}, p.errorf("unexpected %q after value", p.s[p.pos])
	}
	return v, nil
}

type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return &LiteralError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) value() (Value, error) {
	if p.pos >= len(p.s) {
		return Value{}, p.errorf("unexpected end of literal")
	}
	if p.s[p.pos] == '[' {
		return p.list()
	}
	return p.number()
}

func (p *literalParser) list() (Value, error) {
	p.pos++ // '['
	items := []Value{}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return List(items...), nil
	}
	for {
		p.skipSpace()
		item, err := p.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return Value{}, p.errorf("unterminated sequence")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return List(items...), nil
		default:
			return Value{}, p.errorf("unexpected %q in sequence", p.s[p.pos])
		}
	}
}

func (p *literalParser) number() (Value, error) {
	start := p.pos
	if p.s[p.pos] == '+' || p.s[p.pos] == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
		digits++
	}
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		p.pos = start
		return Value{}, p.errorf("expected number")
	}
	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}
		exp := 0
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
			exp++
		}
		if exp == 0 {
			return Value{}, p.errorf("malformed exponent")
		}
	}
	f, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return Value{}, &LiteralError{Offset: start, Msg: err.Error()}
	}
	return Number(f), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
