package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnknownInventoryKey, http.StatusNotFound},
		{CodeAlreadyFinalized, http.StatusConflict},
		{CodeDuplicateKey, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("MetadataFor(%s).HTTPStatus = %d, want %d", tc.code, got, tc.status)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "ledger update")
	if err.Unwrap() != cause {
		t.Fatal("expected cause to unwrap")
	}
	if As(err) == nil || As(err).Code() != CodeDependency {
		t.Fatalf("unexpected typed error: %v", err)
	}
}

func TestAsThroughWrappedChain(t *testing.T) {
	inner := New(CodeAlreadyFinalized, "order finalized")
	outer := fmt.Errorf("handler: %w", inner)
	typed := As(outer)
	if typed == nil || typed.Code() != CodeAlreadyFinalized {
		t.Fatalf("expected ALREADY_FINALIZED through chain, got %v", typed)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad input").WithDetails(map[string]string{"quantity": "must be positive"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["quantity"] != "must be positive" {
		t.Fatalf("unexpected details: %v", err.Details())
	}
}
