package value

import (
	"fmt"
	"strings"
)

type Kind int

const (
	// a bare token, e.g. 1000, true, 0x0102, 5Grwva..., Id
	Scalar Kind = iota
	// a double quoted string
	Quoted
	// a token followed by a parenthesized list, e.g. Some(1), Id(5Grwva...)
	Named
	// a parenthesized list, e.g. (1, 2)
	Group
	// a bracketed list, e.g. [1, 2]
	List
)

// Value is one node of a parsed argument text.
type Value struct {
	Kind Kind
	// token or quoted content
	Text  string
	Items []*Value
}

func (v *Value) String() string {
	switch v.Kind {
	case Quoted:
		return Quote(v.Text)
	case Named:
		return v.Text + "(" + Join(v.Items) + ")"
	case Group:
		return "(" + Join(v.Items) + ")"
	case List:
		return "[" + Join(v.Items) + "]"
	}
	return v.Text
}

func Join(values []*Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func Quote(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	return `"` + text + `"`
}

// Parse a comma separated list of values.
func Parse(text string) ([]*Value, error) {
	p := &parser{input: text}
	values, err := p.list(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos])
	}
	return values, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("invalid value %q at offset %d: %s", p.input, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	switch c {
	case ',', '(', ')', '[', ']', '"':
		return true
	}
	return false
}

func (p *parser) peek() (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

// list parses values up to the closing delimiter, which is left unconsumed.
func (p *parser) list(closing byte) ([]*Value, error) {
	values := []*Value{}
	c, ok := p.peek()
	if !ok || c == closing {
		return values, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		c, ok = p.peek()
		if !ok || c != ',' {
			return values, nil
		}
		p.pos++
	}
}

func (p *parser) enclosed(closing byte) ([]*Value, error) {
	p.pos++
	items, err := p.list(closing)
	if err != nil {
		return nil, err
	}
	c, ok := p.peek()
	if !ok || c != closing {
		return nil, p.errorf("expected %q", closing)
	}
	p.pos++
	return items, nil
}

func (p *parser) value() (*Value, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("expected a value")
	}
	switch c {
	case '(':
		items, err := p.enclosed(')')
		if err != nil {
			return nil, err
		}
		return &Value{Kind: Group, Items: items}, nil
	case '[':
		items, err := p.enclosed(']')
		if err != nil {
			return nil, err
		}
		return &Value{Kind: List, Items: items}, nil
	case '"':
		return p.quoted()
	case ',', ')', ']':
		return nil, p.errorf("expected a value")
	}

	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	token := strings.TrimSpace(p.input[start:p.pos])
	if c, ok := p.peek(); ok && c == '(' && !strings.ContainsAny(token, " \t") {
		items, err := p.enclosed(')')
		if err != nil {
			return nil, err
		}
		return &Value{Kind: Named, Text: token, Items: items}, nil
	}
	return &Value{Kind: Scalar, Text: token}, nil
}

func (p *parser) quoted() (*Value, error) {
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return nil, p.errorf("unterminated escape")
			}
			sb.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case '"':
			p.pos++
			return &Value{Kind: Quoted, Text: sb.String()}, nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errorf("unterminated string")
}
