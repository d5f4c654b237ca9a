package errors

import (
	"errors"
	"testing"
)

func TestWrapperWrap(t *testing.T) {
	t.Parallel()

	w := NewWrapper("feedback", "aggregate")

	if w.Wrap(nil, "should be nil") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	cause := errors.New("boom")
	err := w.Wrap(cause, "could not read feedback")

	var wrapped *WrappedError
	if !errors.As(err, &wrapped) {
		t.Fatal("expected *WrappedError")
	}
	if wrapped.Module != "feedback" || wrapped.Operation != "aggregate" {
		t.Errorf("unexpected context: %s/%s", wrapped.Module, wrapped.Operation)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause")
	}
}

func TestGetUserMessage(t *testing.T) {
	t.Parallel()

	w := NewWrapper("resolve", "resolve_instructor")
	err := w.Wrapf(errors.New("roster missing"), "no instructors known for %s", "Mathematics")

	got := GetUserMessage(err)
	want := "no instructors known for Mathematics"
	if got != want {
		t.Errorf("GetUserMessage() = %q, want %q", got, want)
	}

	if GetUserMessage(nil) != "" {
		t.Error("GetUserMessage(nil) should be empty")
	}
	if GetUserMessage(errors.New("plain")) != "plain" {
		t.Error("GetUserMessage(plain) should return the error string")
	}
}
