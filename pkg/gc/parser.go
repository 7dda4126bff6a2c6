// ABOUTME: Recursive descent parser for the textual garbage collection policy grammar
// ABOUTME: Produces positioned parse errors rendered with the offending line and a caret

package gc

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is an error in the textual representation of a garbage
// collection policy, positioned at the byte offset where parsing failed.
type ParseError struct {
	// Input is the full text that failed to parse
	Input string

	// Offset is the byte offset of the failure
	Offset int

	// Context names the grammar production being parsed
	Context string

	// Message describes what was expected or rejected
	Message string
}

// Error renders the offending line with a caret under the failure position.
func (e *ParseError) Error() string {
	line := 1
	lineStart := 0
	for i := 0; i < e.Offset && i < len(e.Input); i++ {
		if e.Input[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineText := e.Input[lineStart:]
	if idx := strings.IndexByte(lineText, '\n'); idx >= 0 {
		lineText = lineText[:idx]
	}
	lineText = strings.TrimRight(lineText, " \t")
	column := e.Offset - lineStart + 1

	return fmt.Sprintf("at line %d, in %s:\n%s\n%*s\n%s",
		line, e.Context, lineText, column, "^", e.Message)
}

// Parse parses the canonical text form of a garbage collection policy.
// The grammar:
//
//	policy     = versions | expires | any | all
//	versions   = "versions" "=" number
//	expires    = "ttl_micros" "=" number
//	any        = "any" "(" [ policy { "," policy } [ "," ] ] ")"
//	all        = "all" "(" [ policy { "," policy } [ "," ] ] ")"
//
// Numbers must be positive. Whitespace is insignificant and a trailing
// comma inside any/all lists is tolerated.
func Parse(input string) (Policy, error) {
	p := &parser{input: input}
	policy, err := p.policy()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.fail("garbage collection policy", "unexpected trailing input")
	}
	return policy, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) fail(context, message string) error {
	return &ParseError{
		Input:   p.input,
		Offset:  p.pos,
		Context: context,
		Message: message,
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// ident scans the lowercase word or underscore run at the cursor without
// consuming it.
func (p *parser) ident() string {
	end := p.pos
	for end < len(p.input) {
		c := p.input[end]
		if (c < 'a' || c > 'z') && c != '_' {
			break
		}
		end++
	}
	return p.input[p.pos:end]
}

func (p *parser) expect(context string, c byte) error {
	if p.pos >= len(p.input) {
		return p.fail(context, fmt.Sprintf("expected %q, got end of input", string(c)))
	}
	if p.input[p.pos] != c {
		return p.fail(context, fmt.Sprintf("expected %q, found %q", string(c), string(p.input[p.pos])))
	}
	p.pos++
	return nil
}

func (p *parser) policy() (Policy, error) {
	p.skipSpace()
	word := p.ident()
	switch word {
	case "versions":
		p.pos += len(word)
		n, err := p.equalsNumber("versions")
		if err != nil {
			return nil, err
		}
		return Versions{Count: n}, nil
	case "ttl_micros":
		p.pos += len(word)
		n, err := p.equalsNumber("expires")
		if err != nil {
			return nil, err
		}
		return Expires{MaxAgeMicros: n}, nil
	case "any":
		p.pos += len(word)
		members, err := p.policyList("any")
		if err != nil {
			return nil, err
		}
		return Any{Policies: members}, nil
	case "all":
		p.pos += len(word)
		members, err := p.policyList("all")
		if err != nil {
			return nil, err
		}
		return All{Policies: members}, nil
	default:
		return nil, p.fail("garbage collection policy",
			"expected one of versions, ttl_micros, any, all")
	}
}

func (p *parser) equalsNumber(context string) (uint64, error) {
	p.skipSpace()
	if err := p.expect(context, '='); err != nil {
		return 0, err
	}
	p.skipSpace()
	return p.number(context)
}

func (p *parser) number(context string) (uint64, error) {
	end := p.pos
	for end < len(p.input) && p.input[end] >= '0' && p.input[end] <= '9' {
		end++
	}
	if end == p.pos {
		return 0, p.fail("number literal", "expected a number")
	}
	n, err := strconv.ParseUint(p.input[p.pos:end], 10, 64)
	if err != nil {
		return 0, p.fail("number literal", "invalid number")
	}
	if n == 0 {
		return 0, p.fail("number literal", "must be non-zero")
	}
	p.pos = end
	return n, nil
}

func (p *parser) policyList(context string) ([]Policy, error) {
	p.skipSpace()
	if err := p.expect(context, '('); err != nil {
		return nil, err
	}
	var members []Policy
	for {
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ')' {
			break
		}
		member, err := p.policy()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if err := p.expect(context, ')'); err != nil {
		return nil, err
	}
	return members, nil
}
