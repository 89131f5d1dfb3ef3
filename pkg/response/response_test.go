package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIs(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "calibration not found")

	if !errors.Is(fmt.Errorf("get: %w", notFound), notFound) {
		t.Error("wrapped sentinel not matched")
	}
	if !errors.Is(notFound, NewError(http.StatusNotFound, "calibration not found")) {
		t.Error("equal code and message not matched")
	}
	if errors.Is(notFound, NewError(http.StatusForbidden, "calibration not found")) {
		t.Error("different code matched")
	}
}
