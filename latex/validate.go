package latex

import (
	"regexp"
	"strings"
)

// Validation messages.
const (
	MsgMissingDocumentClass = `Missing \documentclass declaration`
	MsgMissingBegin         = `Missing \begin{document}`
	MsgMissingEnd           = `Missing \end{document}`
	MsgUnbalancedBraces     = "Unbalanced braces detected"
	MsgBraceMismatch        = "Unbalanced braces - mismatch in opening/closing braces"
	MsgDeepNesting          = "Deeply nested braces (may cause issues)"
)

// Report is the advisory outcome of Validate. IsValid is true iff Errors is empty.
type Report struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

type pattern struct {
	re      *regexp.Regexp
	message string
}

var suspiciousPatterns = []pattern{
	{re: regexp.MustCompile(`\{[^}]*\{[^}]*\{[^}]*\{`), message: MsgDeepNesting},
}

// Validate performs structural sanity checks on LaTeX source. It never fails
// and does not block compilation.
func Validate(source string) Report {
	errs := []string{}

	if !strings.Contains(source, `\documentclass`) {
		errs = append(errs, MsgMissingDocumentClass)
	}
	if !strings.Contains(source, beginDocument) {
		errs = append(errs, MsgMissingBegin)
	}
	if !strings.Contains(source, endDocument) {
		errs = append(errs, MsgMissingEnd)
	}

	count := 0
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '{':
			count++
		case '}':
			count--
		}
		if count < 0 {
			errs = append(errs, MsgUnbalancedBraces)
			break
		}
	}
	if count != 0 {
		errs = append(errs, MsgBraceMismatch)
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(source) {
			errs = append(errs, p.message)
		}
	}

	return Report{IsValid: len(errs) == 0, Errors: errs}
}
