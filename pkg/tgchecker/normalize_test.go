package tgchecker

import (
	"errors"
	"testing"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.PhoneNumber
	}{
		{name: "plain digits", raw: "12345678901", want: "12345678901"},
		{name: "keeps leading plus", raw: "+12345678901", want: "+12345678901"},
		{name: "strips spaces", raw: " +1 234 567 8901 ", want: "+12345678901"},
		{name: "strips dashes and parentheses", raw: "+1 (234) 567-8901", want: "+12345678901"},
		{name: "tabs and newlines", raw: "\t98765\n43210", want: "9876543210"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.raw)
			if err != nil {
				t.Fatalf("Clean(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			again, err := Clean(string(got))
			if err != nil {
				t.Fatalf("Clean(%q) second pass: %v", got, err)
			}
			if again != got {
				t.Errorf("Clean is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCleanRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "only separators", raw: "()--  "},
		{name: "letters", raw: "abc"},
		{name: "plus only", raw: "+"},
		{name: "plus with separators only", raw: "+ ( )"},
		{name: "double plus", raw: "++123456"},
		{name: "plus in the middle", raw: "123+456"},
		{name: "mixed letters", raw: "+1 555 CALL NOW"},
		{name: "dots are not separators", raw: "234.567.8901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Clean(tt.raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Clean(%q) error = %v, want *ValidationError", tt.raw, err)
			}
			if verr.Input != tt.raw {
				t.Errorf("ValidationError.Input = %q, want %q", verr.Input, tt.raw)
			}
			if errors.Is(err, ErrChecker) {
				t.Errorf("validation errors must not match ErrChecker")
			}
			if Kind(err) != KindValidation {
				t.Errorf("Kind = %v, want validation", Kind(err))
			}
		})
	}
}

func TestBuildBatch(t *testing.T) {
	batch, err := BuildBatch([]string{"+1234567890", "9876543210"})
	if err != nil {
		t.Fatalf("BuildBatch: %v", err)
	}
	want := model.NumberBatch{"+1234567890", "9876543210"}
	if len(batch) != len(want) {
		t.Fatalf("expected %d numbers, got %d", len(want), len(batch))
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Errorf("batch[%d] = %q, want %q", i, batch[i], want[i])
		}
	}
	if got := batch.Join(); got != "+1234567890,9876543210" {
		t.Errorf("Join() = %q", got)
	}
}

func TestBuildBatchKeepsDuplicates(t *testing.T) {
	batch, err := BuildBatch([]string{"+1 234 567 890", "+1234567890"})
	if err != nil {
		t.Fatalf("BuildBatch: %v", err)
	}
	if len(batch) != 2 || batch[0] != batch[1] {
		t.Fatalf("expected two identical entries, got %v", batch)
	}
}

func TestBuildBatchEmpty(t *testing.T) {
	for _, in := range [][]string{nil, {}} {
		_, err := BuildBatch(in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("BuildBatch(%v) error = %v, want *ValidationError", in, err)
		}
		if verr.Index != -1 {
			t.Errorf("expected batch-level index -1, got %d", verr.Index)
		}
	}
}

func TestBuildBatchIdentifiesOffendingElement(t *testing.T) {
	_, err := BuildBatch([]string{"+1234567890", "12345", "not-a-number"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Index != 2 || verr.Input != "not-a-number" {
		t.Errorf("unexpected offending element: index=%d input=%q", verr.Index, verr.Input)
	}
}
