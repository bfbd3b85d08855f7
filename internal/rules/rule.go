// Package rules evaluates a totaled invoice document against the EN 16931
// business rules and returns every violation as data.
//
// The registry is built once and read only afterwards; it may be shared
// across concurrent validations. Evaluation never short circuits: cascading
// violations are intended, a single data error routinely trips several
// related rules at once.
package rules

import (
	"sync"

	"github.com/rezonia/einvoice/internal/model"
)

// Rule is one named business rule. Eval returns the number of violated
// matching keys; each one becomes a separate violation entry.
type Rule struct {
	Code string
	Text string
	Eval func(doc *model.Document) int
}

// Message returns the pre-formatted violation message. Downstream
// consumers match on the "[<code>] <text>" form.
func (r *Rule) Message() string {
	return "[" + r.Code + "] " + r.Text
}

// Violation is one reported rule breach
type Violation struct {
	RuleCode string `json:"ruleCode"`
	Message  string `json:"message"`
}

// Result is the validation verdict. Errors is absent, not empty, when the
// document is valid.
type Result struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors,omitempty"`
}

var (
	registryOnce sync.Once
	registry     []Rule
)

// Registry returns the immutable, ordered rule registry. Built lazily on
// first use, never rebuilt or mutated afterwards.
func Registry() []Rule {
	registryOnce.Do(func() {
		registry = buildRegistry()
	})
	return registry
}

// Validate evaluates every registered rule against doc in registration
// order and collects every violation. It never fails for a substantively
// valid but non-compliant document.
func Validate(doc *model.Document) Result {
	var errs []Violation
	reg := Registry()
	for i := range reg {
		r := &reg[i]
		for n := r.Eval(doc); n > 0; n-- {
			errs = append(errs, Violation{RuleCode: r.Code, Message: r.Message()})
		}
	}

	if len(errs) == 0 {
		return Result{Valid: true}
	}
	return Result{Valid: false, Errors: errs}
}
