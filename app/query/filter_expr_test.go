package query

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// TestTokenizer tests the tokenization of filter expressions
func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "single condition",
			input: "username=scrappy",
			expected: []Token{
				{Type: TokenLiteral, Value: "username=scrappy"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "quoted field with AND",
			input: `"user name"=scrappy AND age>30`,
			expected: []Token{
				{Type: TokenLiteral, Value: `"user name"=scrappy`},
				{Type: TokenAND, Value: "AND"},
				{Type: TokenLiteral, Value: "age>30"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "quoted value with spaces",
			input: `name="Ann Lee" city~ber`,
			expected: []Token{
				{Type: TokenLiteral, Value: `name="Ann Lee"`},
				{Type: TokenLiteral, Value: "city~ber"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "parentheses and OR",
			input: "(a=1 OR b=2)",
			expected: []Token{
				{Type: TokenLParen, Value: "("},
				{Type: TokenLiteral, Value: "a=1"},
				{Type: TokenOR, Value: "OR"},
				{Type: TokenLiteral, Value: "b=2"},
				{Type: TokenRParen, Value: ")"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "case insensitive operators",
			input: "a=1 and not b=2",
			expected: []Token{
				{Type: TokenLiteral, Value: "a=1"},
				{Type: TokenAND, Value: "and"},
				{Type: TokenNOT, Value: "not"},
				{Type: TokenLiteral, Value: "b=2"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenizer := NewFilterExprTokenizer(tt.input)
			for i, expected := range tt.expected {
				tok := tokenizer.Next()
				if tok.Type != expected.Type {
					t.Errorf("token %d: expected type %v, got %v", i, expected.Type, tok.Type)
				}
				if tok.Value != expected.Value {
					t.Errorf("token %d: expected value %q, got %q", i, expected.Value, tok.Value)
				}
			}
		})
	}
}

// TestParseFilterCondition tests each operator form
func TestParseFilterCondition(t *testing.T) {
	opts := ExprOptions{Location: time.UTC}

	tests := []struct {
		input    string
		expected FilterCondition
	}{
		{"status=active", FilterCondition{Field: "status", Operator: OpEquals, Operand: "active"}},
		{"name~bo", FilterCondition{Field: "name", Operator: OpContains, Operand: "bo"}},
		{"name^=Al", FilterCondition{Field: "name", Operator: OpStartsWith, Operand: "Al"}},
		{"email$=.org", FilterCondition{Field: "email", Operator: OpEndsWith, Operand: ".org"}},
		{"age>30", FilterCondition{Field: "age", Operator: OpGreaterThan, Operand: 30.0}},
		{"age<18.5", FilterCondition{Field: "age", Operator: OpLessThan, Operand: 18.5}},
		{"role:in=admin,editor", FilterCondition{Field: "role", Operator: OpIn, Operand: []any{"admin", "editor"}}},
		{"age:between=20..30", FilterCondition{Field: "age", Operator: OpBetween, Operand: []any{20.0, 30.0}}},
		{`"user name"=scrappy`, FilterCondition{Field: "user name", Operator: OpEquals, Operand: "scrappy"}},
		{`name="Ann Lee"`, FilterCondition{Field: "name", Operator: OpEquals, Operand: "Ann Lee"}},
		{"status=", FilterCondition{Field: "status", Operator: OpEquals, Operand: ""}},
		{
			"created>2024-01-02",
			FilterCondition{Field: "created", Operator: OpGreaterThan, Operand: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cond, err := ParseFilterCondition(tt.input, opts)
			if err != nil {
				t.Fatalf("ParseFilterCondition(%q) error: %v", tt.input, err)
			}
			if cond.Field != tt.expected.Field || cond.Operator != tt.expected.Operator {
				t.Fatalf("ParseFilterCondition(%q) = %+v, expected %+v", tt.input, cond, tt.expected)
			}
			if want, ok := tt.expected.Operand.(time.Time); ok {
				got, ok := cond.Operand.(time.Time)
				if !ok || !got.Equal(want) {
					t.Errorf("operand = %v, expected %v", cond.Operand, want)
				}
				return
			}
			if !reflect.DeepEqual(cond.Operand, tt.expected.Operand) {
				t.Errorf("operand = %#v, expected %#v", cond.Operand, tt.expected.Operand)
			}
		})
	}
}

func TestParseFilterConditionRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	opts := ExprOptions{Location: time.UTC, Now: now}

	conds, err := ParseFilterExpression(`created>"2d ago"`, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conds) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(conds))
	}
	got, ok := conds[0].Operand.(time.Time)
	if !ok || !got.Equal(now.Add(-48*time.Hour)) {
		t.Errorf("operand = %v, expected %v", conds[0].Operand, now.Add(-48*time.Hour))
	}

	// Unquoted, "ago" becomes a condition of its own.
	if _, err := ParseFilterExpression("created>2d ago", opts); err == nil {
		t.Error("expected error for unquoted relative phrase with spaces")
	}
}

// TestParseFilterExpression tests whole expressions
func TestParseFilterExpression(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected []FilterCondition
	}{
		{
			name:     "empty",
			expr:     "   ",
			expected: nil,
		},
		{
			name: "implicit AND",
			expr: "city=Berlin age>30",
			expected: []FilterCondition{
				{Field: "city", Operator: OpEquals, Operand: "Berlin"},
				{Field: "age", Operator: OpGreaterThan, Operand: 30.0},
			},
		},
		{
			name: "explicit AND",
			expr: "city=Berlin AND name~bo",
			expected: []FilterCondition{
				{Field: "city", Operator: OpEquals, Operand: "Berlin"},
				{Field: "name", Operator: OpContains, Operand: "bo"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, err := ParseFilterExpression(tt.expr, ExprOptions{})
			if err != nil {
				t.Fatalf("ParseFilterExpression(%q) error: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(conds, tt.expected) {
				t.Errorf("ParseFilterExpression(%q) = %#v, expected %#v", tt.expr, conds, tt.expected)
			}
		})
	}
}

// TestParseFilterExpressionErrors tests rejected expressions
func TestParseFilterExpressionErrors(t *testing.T) {
	tests := []string{
		"a=1 OR b=2",
		"NOT a=1",
		"(a=1)",
		"AND a=1",
		"a=1 AND",
		"scrappy",
		"age>1 age<5",
		"age:between=10",
		`"unterminated=1`,
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseFilterExpression(expr, ExprOptions{})
			if err == nil {
				t.Fatalf("ParseFilterExpression(%q) expected error", expr)
			}
			var exprErr *ExpressionError
			if !errors.As(err, &exprErr) {
				t.Errorf("expected *ExpressionError, got %T", err)
			}
		})
	}
}
