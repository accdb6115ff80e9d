// Package calc evaluates the simple binary arithmetic people say out loud:
// "10 plus 5", "12 * 4", "square root of 16".
package calc

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xaenox/offline-assistant/internal/language"
)

var (
	ErrParse          = errors.New("calc: expression needs two numbers")
	ErrDivisionByZero = errors.New("calc: division by zero")
	ErrOverflow       = errors.New("calc: result out of range")
)

type Operator string

const (
	OpAdd     Operator = "+"
	OpSub     Operator = "-"
	OpMul     Operator = "*"
	OpDiv     Operator = "/"
	OpPow     Operator = "^"
	OpPercent Operator = "%"
	OpMod     Operator = "mod"
	OpSqrt    Operator = "sqrt"
)

var displayOps = map[Operator]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "×",
	OpDiv: "÷",
	OpPow: "^",
	OpMod: "mod",
}

type keyword struct {
	word string
	op   Operator
}

// Keywords are checked before symbols, in this order.
var keywordOps = []keyword{
	{"plus", OpAdd},
	{"add", OpAdd},
	{"به علاوه", OpAdd},
	{"بعلاوه", OpAdd},
	{"جمع", OpAdd},
	{"minus", OpSub},
	{"subtract", OpSub},
	{"منهای", OpSub},
	{"times", OpMul},
	{"multipl", OpMul},
	{"ضرب", OpMul},
	{"divide", OpDiv},
	{"تقسیم", OpDiv},
	{"power", OpPow},
	{"to the", OpPow},
	{"به توان", OpPow},
	{"percent", OpPercent},
	{"درصد", OpPercent},
	{"mod", OpMod},
	{"remainder", OpMod},
	{"باقیمانده", OpMod},
}

var symbolOps = []keyword{
	{"+", OpAdd},
	{"-", OpSub},
	{"*", OpMul},
	{"×", OpMul},
	{"/", OpDiv},
	{"÷", OpDiv},
	{"^", OpPow},
	{"%", OpPercent},
}

var (
	expressionPattern = compileExpressionPattern()
	sqrtPattern       = regexp.MustCompile(`(?:square root of|sqrt|√|جذر)\s*\(?\s*(\d+(?:\.\d+)?)`)
	numberPattern     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	letterXPattern    = regexp.MustCompile(`\d\s*x\s*\d`)
)

// compileExpressionPattern matches "<number> <operator> <number>" for every
// keyword and symbol DetectOperator knows. Letters may follow a keyword, as
// in "divided by" or "to the power of".
func compileExpressionPattern() *regexp.Regexp {
	alts := make([]string, 0, len(keywordOps)+len(symbolOps))
	for _, k := range keywordOps {
		alts = append(alts, regexp.QuoteMeta(k.word))
	}
	for _, s := range symbolOps {
		alts = append(alts, regexp.QuoteMeta(s.word))
	}
	return regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:` + strings.Join(alts, "|") + `)[\p{L}\s]*?\d`)
}

// IsExpression reports whether text states an arithmetic expression that
// Calculate can evaluate without guessing the operator.
func IsExpression(text string) bool {
	normalized := strings.ToLower(language.NormalizeDigits(text))
	return sqrtPattern.MatchString(normalized) ||
		expressionPattern.MatchString(normalized) ||
		letterXPattern.MatchString(normalized)
}

// Calculation is one evaluated expression.
type Calculation struct {
	A     float64
	B     float64
	Op    Operator
	Value float64
}

// String renders the arithmetic identity, e.g. "12 × 4 = 48".
func (c Calculation) String() string {
	switch c.Op {
	case OpSqrt:
		return fmt.Sprintf("√%s = %s", FormatNumber(c.A), FormatNumber(c.Value))
	case OpPercent:
		return fmt.Sprintf("%s%% of %s = %s", FormatNumber(c.A), FormatNumber(c.B), FormatNumber(c.Value))
	case OpDiv:
		return fmt.Sprintf("%s ÷ %s = %s", FormatNumber(c.A), FormatNumber(c.B), formatQuotient(c.Value))
	}
	return fmt.Sprintf("%s %s %s = %s", FormatNumber(c.A), displayOps[c.Op], FormatNumber(c.B), FormatNumber(c.Value))
}

// Evaluate finds the expression in text and returns its identity string.
func Evaluate(text string) (string, error) {
	c, err := Calculate(text)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Calculate finds the expression in text and computes it.
func Calculate(text string) (Calculation, error) {
	normalized := strings.ToLower(language.NormalizeDigits(text))

	if m := sqrtPattern.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Calculation{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return Calculation{A: n, Op: OpSqrt, Value: math.Sqrt(n)}, nil
	}

	tokens := numberPattern.FindAllString(normalized, -1)
	if len(tokens) < 2 {
		return Calculation{}, ErrParse
	}
	a, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return Calculation{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	b, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Calculation{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	op := DetectOperator(normalized)
	value, err := apply(a, b, op)
	if err != nil {
		return Calculation{}, err
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return Calculation{}, ErrOverflow
	}
	return Calculation{A: a, B: b, Op: op, Value: value}, nil
}

// DetectOperator picks the operator named in text. Spoken keywords win over
// symbols; with neither present the numbers are added.
func DetectOperator(text string) Operator {
	for _, k := range keywordOps {
		if strings.Contains(text, k.word) {
			return k.op
		}
	}
	for _, s := range symbolOps {
		if strings.Contains(text, s.word) {
			return s.op
		}
	}
	if letterXPattern.MatchString(text) {
		return OpMul
	}
	return OpAdd
}

func apply(a, b float64, op Operator) (float64, error) {
	switch op {
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case OpPow:
		return math.Pow(a, b), nil
	case OpPercent:
		return a * b / 100, nil
	case OpMod:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Mod(a, b), nil
	}
	return a + b, nil
}

// FormatNumber prints integral values without a decimal point and anything
// else with at most four decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// formatQuotient rounds to four decimals before printing the shortest form.
// Its output matches FormatNumber.
func formatQuotient(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) || math.Abs(v) >= 1e15 {
		return FormatNumber(v)
	}
	rounded := math.Round(v*10000) / 10000
	if rounded == 0 {
		// drop negative zero
		rounded = 0
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
