package plugin

import (
	"errors"
	"strings"
	"testing"
)

func TestContentHashIsStableAndDistinguishesBytes(t *testing.T) {
	a := contentHash([]byte("module a"))
	b := contentHash([]byte("module a"))
	c := contentHash([]byte("module b"))
	if a != b {
		t.Fatalf("identical bytes hashed differently: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("distinct bytes hashed the same: %s", a)
	}
}

func TestSubscriptionGatesDelivery(t *testing.T) {
	inst := &Instance{subscriptions: subscriptionSet([]EventKind{EventKey, EventTimer})}
	if !inst.Subscribed(EventKey) {
		t.Error("expected EventKey to be subscribed")
	}
	if inst.Subscribed(EventTabUpdate) {
		t.Error("expected EventTabUpdate to not be subscribed")
	}
}

func TestVersionMismatchErrorMessage(t *testing.T) {
	err := &VersionMismatchError{Path: "foo.wasm", PluginVersion: "0.1.0", ServerVersion: "0.2.0"}
	msg := err.Error()
	if !strings.Contains(msg, "foo.wasm") || !strings.Contains(msg, "0.1.0") || !strings.Contains(msg, "0.2.0") {
		t.Fatalf("error message missing expected fields: %s", msg)
	}
}

func TestErrorPaneContentWrapsMessage(t *testing.T) {
	out := ErrorPaneContent(errors.New("boom: something went very wrong indeed"), 10)
	if len(out) == 0 {
		t.Fatal("expected non-empty error pane content")
	}
	if !strings.Contains(string(out), "plugin error") {
		t.Fatalf("expected an error-pane header, got %q", out)
	}
}

func TestErrorPaneContentNilErrorIsEmpty(t *testing.T) {
	if out := ErrorPaneContent(nil, 80); out != nil {
		t.Fatalf("expected nil output for nil error, got %q", out)
	}
}

func TestInstanceEvictedAfterExceedingBudget(t *testing.T) {
	inst := &Instance{subscriptions: subscriptionSet([]EventKind{EventKey})}
	inst.calls = instructionBudget + 1
	inst.evicted = true
	if !inst.Evicted() {
		t.Fatal("expected instance to report evicted")
	}
}
