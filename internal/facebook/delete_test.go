package facebook

import (
	"context"
	"strings"
	"testing"
)

func TestDeleteActionPrimarySuccess(t *testing.T) {
	graph := &fakeGraph{
		deleteResult: Result{Success: true, Message: "post deleted"},
	}
	action := NewDeleteAction(graph, "token")

	result := action.Execute(context.Background(), "123_456")
	if !result.Success || result.Message != "post deleted" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if graph.deleteCalls != 1 || graph.fallbackCalls != 0 {
		t.Fatalf("expected primary only, got delete=%d fallback=%d", graph.deleteCalls, graph.fallbackCalls)
	}
	if graph.lastPostID != "123_456" {
		t.Fatalf("unexpected post id: %q", graph.lastPostID)
	}
}

func TestDeleteActionFallbackOnTransportError(t *testing.T) {
	graph := &fakeGraph{
		deleteErr:      &TransportError{Err: errTest},
		fallbackResult: Result{Success: true, Message: "post deleted via fallback"},
	}
	action := NewDeleteAction(graph, "token")

	result := action.Execute(context.Background(), "123_456")
	if !result.Success || result.Message != "post deleted via fallback" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if graph.fallbackCalls != 1 {
		t.Fatalf("expected one fallback call, got %d", graph.fallbackCalls)
	}
}

func TestDeleteActionKeepsOriginalErrorWhenFallbackSaysNothing(t *testing.T) {
	graph := &fakeGraph{
		deleteErr:      &TransportError{Err: errTest},
		fallbackResult: Result{Success: false, Error: ""},
	}
	action := NewDeleteAction(graph, "token")

	result := action.Execute(context.Background(), "123_456")
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error != errTest.Error() {
		t.Fatalf("expected original transport error %q, got %q", errTest.Error(), result.Error)
	}
}

func TestDeleteActionPrefersFallbackPlatformMessage(t *testing.T) {
	graph := &fakeGraph{
		deleteErr:      &TransportError{Err: errTest},
		fallbackResult: Result{Success: false, Error: "Unsupported delete request"},
	}
	action := NewDeleteAction(graph, "token")

	result := action.Execute(context.Background(), "123_456")
	if result.Error != "Unsupported delete request" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestDeleteActionDoesNotFallBackOnOtherErrors(t *testing.T) {
	graph := &fakeGraph{
		deleteErr: errTest,
	}
	action := NewDeleteAction(graph, "token")

	result := action.Execute(context.Background(), "123_456")
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(result.Error, "unexpected error: ") {
		t.Fatalf("unexpected error: %q", result.Error)
	}
	if graph.fallbackCalls != 0 {
		t.Fatalf("fallback must be reserved for transport errors, got %d calls", graph.fallbackCalls)
	}
}

func TestDeleteActionMissingToken(t *testing.T) {
	graph := &fakeGraph{}
	action := NewDeleteAction(graph, " ")

	result := action.Execute(context.Background(), "123_456")
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "access token") {
		t.Fatalf("unexpected error: %q", result.Error)
	}
	if graph.networkCalls() != 0 {
		t.Fatalf("expected zero network calls, got %d", graph.networkCalls())
	}
}
