package jxlerr

import (
	"errors"
	"testing"
)

func TestIsShortRead(t *testing.T) {
	if !IsShortRead(ShortReadErr) {
		t.Fatal("ShortReadErr should be reported as short read")
	}
	wrapped := Wrap(ShortRead, "refill", errors.New("eof"))
	if !IsShortRead(wrapped) {
		t.Fatal("wrapped short-read error should still be reported as short read")
	}
	if IsShortRead(New(ErrBadSig, "bad signature")) {
		t.Fatal("non-short-read error incorrectly reported as short read")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrHuffman, "bad code")); got != ErrHuffman {
		t.Fatalf("CodeOf = %v, want %v", got, ErrHuffman)
	}
	if got := CodeOf(TODO("squeeze")); got != (Code{'T', 'O', 'D', 'O'}) {
		t.Fatalf("CodeOf(TODO) = %v, want TODO", got)
	}
	if got := CodeOf(errors.New("plain")); got != (Code{}) {
		t.Fatalf("CodeOf(plain) = %v, want zero Code", got)
	}
}

func TestWrapNilCauseIsNil(t *testing.T) {
	if err := Wrap(ErrBadSig, "x", nil); err != nil {
		t.Fatalf("Wrap with nil cause = %v, want nil", err)
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCoeff, "decode", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error chain should reach the original cause via errors.Is")
	}
	var ce *CodedError
	if !errors.As(err, &ce) {
		t.Fatal("expected *CodedError in chain")
	}
	if ce.Code != ErrCoeff {
		t.Fatalf("Code = %v, want %v", ce.Code, ErrCoeff)
	}
}

func TestPhraseKnownAndUnknown(t *testing.T) {
	if p := Phrase(ErrBadSig); p == "unknown error" {
		t.Fatal("ErrBadSig should have a known phrase")
	}
	if p := Phrase(Code{'z', 'z', 'z', 'z'}); p != "unknown error" {
		t.Fatalf("Phrase(unknown) = %q, want %q", p, "unknown error")
	}
}

func TestUnsupportedError(t *testing.T) {
	err := TODO("squeeze")
	if err.Error() != "TODO:squeeze" {
		t.Fatalf("Unsupported.Error() = %q, want %q", err.Error(), "TODO:squeeze")
	}
}
