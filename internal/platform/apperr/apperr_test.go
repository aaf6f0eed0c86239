package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errThingNotFound = New("THING_NOT_FOUND", http.StatusNotFound, "thing not found")

func TestIs_MatchesByKind(t *testing.T) {
	err := errThingNotFound.Withf("thing %s not found", "t-1")
	if !errors.Is(err, errThingNotFound) {
		t.Fatalf("expected errors.Is to match by kind")
	}
	wrapped := fmt.Errorf("lookup: %w", err)
	if !errors.Is(wrapped, errThingNotFound) {
		t.Fatalf("expected wrapped error to match")
	}
	if StatusOf(wrapped) != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", StatusOf(wrapped))
	}
}

func TestUnknown_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Unknown(cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay reachable via Unwrap")
	}
	resp := ToResponse(err)
	if resp.Status != http.StatusInternalServerError || resp.Kind != KindUnknown {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message != "internal server error" {
		t.Fatalf("cause leaked into message: %q", resp.Message)
	}
}

func TestToResponse_UntypedIsUnknown(t *testing.T) {
	resp := ToResponse(errors.New("boom"))
	if resp.Kind != KindUnknown || resp.Status != http.StatusInternalServerError || resp.Message == "boom" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
