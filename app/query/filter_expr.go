package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gridview/app/timestamps"
)

// TokenType represents the type of a token in the filter expression
type TokenType int

const (
	TokenLiteral TokenType = iota // A condition (e.g., "username=admin", "age>30")
	TokenAND                      // AND operator
	TokenOR                       // OR operator
	TokenNOT                      // NOT operator
	TokenLParen                   // Left parenthesis (
	TokenRParen                   // Right parenthesis )
	TokenEOF                      // End of expression
)

// Token represents a token in the filter expression
type Token struct {
	Type  TokenType
	Value string
}

// FilterExprTokenizer tokenizes a filter expression
type FilterExprTokenizer struct {
	input    string
	pos      int
	tokens   []Token
	tokenPos int
}

// NewFilterExprTokenizer creates a new tokenizer for a filter expression
func NewFilterExprTokenizer(input string) *FilterExprTokenizer {
	t := &FilterExprTokenizer{
		input: input,
		pos:   0,
	}
	t.tokenize()
	return t
}

// tokenize splits the input into tokens
func (t *FilterExprTokenizer) tokenize() {
	t.tokens = nil
	t.pos = 0

	for t.pos < len(t.input) {
		// Skip whitespace
		if isExprWhitespace(t.input[t.pos]) {
			t.pos++
			continue
		}

		// Check for parentheses
		if t.input[t.pos] == '(' {
			t.tokens = append(t.tokens, Token{Type: TokenLParen, Value: "("})
			t.pos++
			continue
		}
		if t.input[t.pos] == ')' {
			t.tokens = append(t.tokens, Token{Type: TokenRParen, Value: ")"})
			t.pos++
			continue
		}

		// Read a word (up to whitespace, parenthesis, or end). Quoted runs
		// like "user name"=value or name="Ann Lee" stay in one word.
		start := t.pos
		for t.pos < len(t.input) && !isExprWhitespace(t.input[t.pos]) && t.input[t.pos] != '(' && t.input[t.pos] != ')' {
			if t.input[t.pos] == '"' || t.input[t.pos] == '\'' {
				quote := t.input[t.pos]
				t.pos++
				for t.pos < len(t.input) && t.input[t.pos] != quote {
					t.pos++
				}
				if t.pos < len(t.input) {
					t.pos++ // consume closing quote
				}
				continue
			}
			t.pos++
		}

		word := t.input[start:t.pos]
		switch strings.ToUpper(word) {
		case "AND":
			t.tokens = append(t.tokens, Token{Type: TokenAND, Value: word})
		case "OR":
			t.tokens = append(t.tokens, Token{Type: TokenOR, Value: word})
		case "NOT":
			t.tokens = append(t.tokens, Token{Type: TokenNOT, Value: word})
		default:
			if word != "" {
				t.tokens = append(t.tokens, Token{Type: TokenLiteral, Value: word})
			}
		}
	}

	t.tokens = append(t.tokens, Token{Type: TokenEOF, Value: ""})
}

func isExprWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Peek returns the current token without consuming it
func (t *FilterExprTokenizer) Peek() Token {
	if t.tokenPos >= len(t.tokens) {
		return Token{Type: TokenEOF, Value: ""}
	}
	return t.tokens[t.tokenPos]
}

// Next returns the current token and advances to the next
func (t *FilterExprTokenizer) Next() Token {
	tok := t.Peek()
	t.tokenPos++
	return tok
}

// HasUnsupportedOperators reports whether the expression uses OR, NOT or
// parentheses. Conditions only combine with AND.
func (t *FilterExprTokenizer) HasUnsupportedOperators() bool {
	for _, tok := range t.tokens {
		switch tok.Type {
		case TokenOR, TokenNOT, TokenLParen, TokenRParen:
			return true
		}
	}
	return false
}

// ExpressionError reports a filter expression that cannot be parsed
type ExpressionError struct {
	Token   string
	Message string
}

func (e *ExpressionError) Error() string {
	if e.Token == "" {
		return "filter expression: " + e.Message
	}
	return fmt.Sprintf("filter expression %q: %s", e.Token, e.Message)
}

// ExprOptions controls how operands are typed
type ExprOptions struct {
	Location *time.Location // Zone for timezone-less dates, time.Local when nil
	Now      time.Time      // Reference for relative dates such as "2d ago", time.Now() when zero
}

// ParseFilterExpression parses whitespace-separated conditions, optionally
// joined by AND, into filter conditions. Each field may appear only once.
func ParseFilterExpression(expr string, opts ExprOptions) ([]FilterCondition, error) {
	tokenizer := NewFilterExprTokenizer(expr)
	if tokenizer.HasUnsupportedOperators() {
		return nil, &ExpressionError{Message: "only AND is supported between conditions"}
	}

	var conditions []FilterCondition
	seen := make(map[string]bool)
	expectCondition := true

	for {
		tok := tokenizer.Next()
		switch tok.Type {
		case TokenEOF:
			if expectCondition && len(conditions) > 0 {
				return nil, &ExpressionError{Message: "expression ends with AND"}
			}
			return conditions, nil
		case TokenAND:
			if expectCondition {
				return nil, &ExpressionError{Token: tok.Value, Message: "AND must sit between two conditions"}
			}
			expectCondition = true
		case TokenLiteral:
			cond, err := ParseFilterCondition(tok.Value, opts)
			if err != nil {
				return nil, err
			}
			if seen[cond.Field] {
				return nil, &ExpressionError{Token: tok.Value, Message: fmt.Sprintf("field %q appears more than once; use between for ranges", cond.Field)}
			}
			seen[cond.Field] = true
			conditions = append(conditions, cond)
			expectCondition = false
		}
	}
}

// exprOperators in match order; longer forms first so that "^=" wins over "=".
var exprOperators = []struct {
	symbol string
	op     Operator
}{
	{":between=", OpBetween},
	{":in=", OpIn},
	{"^=", OpStartsWith},
	{"$=", OpEndsWith},
	{"=", OpEquals},
	{"~", OpContains},
	{">", OpGreaterThan},
	{"<", OpLessThan},
}

// ParseFilterCondition parses one "field<op>value" condition.
func ParseFilterCondition(text string, opts ExprOptions) (FilterCondition, error) {
	field, rest, err := splitField(text)
	if err != nil {
		return FilterCondition{}, err
	}

	for _, candidate := range exprOperators {
		if !strings.HasPrefix(rest, candidate.symbol) {
			continue
		}
		raw := unquote(strings.TrimPrefix(rest, candidate.symbol))
		operand, err := typeOperand(candidate.op, raw, opts)
		if err != nil {
			return FilterCondition{}, &ExpressionError{Token: text, Message: err.Error()}
		}
		return FilterCondition{Field: field, Operator: candidate.op, Operand: operand}, nil
	}

	return FilterCondition{}, &ExpressionError{Token: text, Message: "expected field followed by =, ~, ^=, $=, >, <, :in= or :between="}
}

// splitField separates a leading (optionally quoted) field name from the
// operator and value.
func splitField(text string) (string, string, error) {
	if text == "" {
		return "", "", &ExpressionError{Message: "empty condition"}
	}

	if text[0] == '"' || text[0] == '\'' {
		end := strings.IndexByte(text[1:], text[0])
		if end < 0 {
			return "", "", &ExpressionError{Token: text, Message: "unterminated quoted field"}
		}
		field := text[1 : end+1]
		if field == "" {
			return "", "", &ExpressionError{Token: text, Message: "empty field name"}
		}
		return field, text[end+2:], nil
	}

	idx := strings.IndexAny(text, "=~<>^$:")
	if idx <= 0 {
		return "", "", &ExpressionError{Token: text, Message: "expected field followed by an operator"}
	}
	return text[:idx], text[idx:], nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// typeOperand turns the raw value into the operand the predicate expects.
// An empty raw value stays "" so that the condition removes the filter.
func typeOperand(op Operator, raw string, opts ExprOptions) (any, error) {
	if raw == "" {
		return "", nil
	}

	switch op {
	case OpGreaterThan, OpLessThan:
		return orderedOperand(raw, opts), nil
	case OpBetween:
		lo, hi, ok := strings.Cut(raw, "..")
		if !ok || lo == "" || hi == "" {
			return nil, fmt.Errorf("between needs a range like 10..20")
		}
		return []any{orderedOperand(unquote(lo), opts), orderedOperand(unquote(hi), opts)}, nil
	case OpIn:
		parts := strings.Split(raw, ",")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			p = unquote(strings.TrimSpace(p))
			if p != "" {
				items = append(items, p)
			}
		}
		return items, nil
	default:
		return raw, nil
	}
}

// orderedOperand prefers a number, then a date or relative time, and falls
// back to the raw string, which compares as non-numeric.
func orderedOperand(raw string, opts ExprOptions) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if t, ok := timestamps.ParseFlexibleTime(raw, now, opts.Location); ok {
		return t
	}
	return raw
}
