package tgchecker

import (
	"errors"
	"regexp"
	"strings"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
)

var (
	// separatorPattern matches the formatting allowed inside numbers: whitespace, dashes and parentheses.
	separatorPattern = regexp.MustCompile(`[\s\-()]+`)
	digitsPattern    = regexp.MustCompile(`^[0-9]+$`)
)

// Clean reduces raw to its canonical form: digits with an optional single leading '+'.
func Clean(raw string) (model.PhoneNumber, error) {
	s := separatorPattern.ReplaceAllString(raw, "")
	if s == "" {
		return "", &ValidationError{Index: -1, Input: raw, Reason: "empty phone number"}
	}

	hasPlus := strings.HasPrefix(s, "+")
	digits := strings.TrimPrefix(s, "+")
	if digits == "" {
		return "", &ValidationError{Index: -1, Input: raw, Reason: "no digits"}
	}
	if !digitsPattern.MatchString(digits) {
		return "", &ValidationError{Index: -1, Input: raw, Reason: "contains non-digit characters"}
	}

	if hasPlus {
		return model.PhoneNumber("+" + digits), nil
	}
	return model.PhoneNumber(digits), nil
}

// BuildBatch cleans every element, keeping order and duplicates.
func BuildBatch(raws []string) (model.NumberBatch, error) {
	if len(raws) == 0 {
		return nil, &ValidationError{Index: -1, Reason: "no phone numbers given"}
	}
	batch := make(model.NumberBatch, 0, len(raws))
	for i, raw := range raws {
		n, err := Clean(raw)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Index = i
			}
			return nil, err
		}
		batch = append(batch, n)
	}
	return batch, nil
}
