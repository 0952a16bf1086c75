// Package command contains write operations (CQRS - Commands).
//
// Handlers assume the request already passed the pipeline's static
// validation. They check business state (referenced rows exist, values
// are unique), build entities through their factories and persist them in
// one unit of work. Expected failures come back as result.Failure or
// result.NotFound; only infrastructure faults are returned as errors.
package command

import (
	"fmt"
	"strings"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/domain/shared"
)

// outcome converts an error raised inside a unit of work into the Result
// protocol. Broken rules are prefixed with prefix; duplicates and missing
// rows keep their own message. Anything else is an infrastructure fault.
func outcome[T any](op, prefix string, err error) (result.Result[T], error) {
	switch {
	case shared.IsNotFound(err):
		return result.NotFound[T](shared.MessageOf(err)), nil
	case shared.IsAlreadyExists(err):
		return result.Failure[T](shared.MessageOf(err)), nil
	case shared.IsDomainRule(err):
		return result.Failure[T](prefix + shared.MessageOf(err)), nil
	default:
		var zero result.Result[T]
		return zero, fmt.Errorf("%s: %w", op, err)
	}
}

// ruleError marks a business-state failure detected by a handler.
func ruleError(domain, op, message string) error {
	return shared.RuleViolation(domain, op, message)
}

// notFoundError marks a missing referenced row detected by a handler.
func notFoundError(domain, entity string) error {
	return shared.NotFound(domain, entity)
}

// uniqueIDs drops duplicates and non-positive ids, keeping input order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// present reports whether an optional text field carries a value.
func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// normalizeEmail lowercases a present address through the value object.
func normalizeEmail(s string) (string, error) {
	if !present(s) {
		return "", nil
	}
	e, err := shared.NewEmail(s)
	if err != nil {
		return "", err
	}
	return e.String(), nil
}

// normalizePhone strips separators from a present phone number.
func normalizePhone(s string) (string, error) {
	if !present(s) {
		return "", nil
	}
	p, err := shared.NewPhoneNumber(s)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
