package diag

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

func span(n int) ident.Span { return ident.NewFileSpan(0, n, n+1) }

func TestCodeStringIsStable(t *testing.T) {
	if got := CodeNonExhaustiveMatch.String(); got != "MAT001" {
		t.Errorf("CodeNonExhaustiveMatch.String() = %q, want MAT001", got)
	}
	if got := Code(9999).String(); got != "UNK9999" {
		t.Errorf("unknown code should render as UNKnnnn, got %q", got)
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" {
		t.Errorf("SeverityError.String() = %q", SeverityError.String())
	}
	if SeverityWarning.String() != "warning" {
		t.Errorf("SeverityWarning.String() = %q", SeverityWarning.String())
	}
}

func TestReportWithSecondaryAndData(t *testing.T) {
	r := New(CodeUnreachableArm, SeverityWarning, "arm is unreachable", span(1)).
		WithSecondary(span(2), span(3)).
		WithData("dominatedBy", "arm-0")
	if len(r.Secondary) != 2 {
		t.Fatalf("WithSecondary should append, got %v", r.Secondary)
	}
	if r.Data["dominatedBy"] != "arm-0" {
		t.Errorf("WithData should store the key, got %v", r.Data)
	}
	if err := r.Error(); !strings.Contains(err, "MAT002") || !strings.Contains(err, "arm is unreachable") {
		t.Errorf("Error() = %q, want it to mention the code and message", err)
	}
}

func TestReportToJSONRoundTrip(t *testing.T) {
	r := New(CodeCannotInferType, SeverityError, "cannot infer type", span(5))
	data, err := r.ToJSON(false)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded.Code != CodeCannotInferType || decoded.Message != "cannot infer type" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestBagHasErrorsIgnoresWarnings(t *testing.T) {
	bag := &Bag{}
	bag.Add(New(CodeUnreachableArm, SeverityWarning, "w", span(1)))
	if bag.HasErrors() {
		t.Fatal("a bag with only warnings should not report HasErrors")
	}
	bag.Add(New(CodeCannotInferType, SeverityError, "e", span(2)))
	if !bag.HasErrors() {
		t.Fatal("a bag with an error report should report HasErrors")
	}
	if len(bag.Errors()) != 1 || len(bag.Warnings()) != 1 {
		t.Errorf("Errors()/Warnings() = %d/%d, want 1/1", len(bag.Errors()), len(bag.Warnings()))
	}
}

func TestBagSortedOrdersBySpan(t *testing.T) {
	bag := &Bag{}
	bag.Add(New(CodeCannotInferType, SeverityError, "second", span(9)))
	bag.Add(New(CodeCannotInferType, SeverityError, "first", span(1)))
	sorted := bag.Sorted()
	if len(sorted) != 2 || sorted[0].Message != "first" || sorted[1].Message != "second" {
		t.Errorf("Sorted() = %+v, want [first second]", sorted)
	}
	// Sorted must not mutate the original accumulation order.
	if bag.Reports[0].Message != "second" {
		t.Error("Sorted() should not reorder the underlying Reports slice")
	}
}

func TestRenderHumanIncludesCodeAndSpan(t *testing.T) {
	r := New(CodeNonExhaustiveMatch, SeverityError, "missing arm", span(3))
	out := RenderHuman(r)
	if !strings.Contains(out, "MAT001") || !strings.Contains(out, "missing arm") {
		t.Errorf("RenderHuman() = %q, want it to mention the code and message", out)
	}
}
