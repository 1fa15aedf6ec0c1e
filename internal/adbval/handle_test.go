package adbval

import "testing"

func TestNewRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		payload uint32
	}{
		{"int zero", KindInt, 0},
		{"int max", KindInt, payloadMask},
		{"blob index", KindBlob, 42},
		{"object index", KindObject, 1 << 20},
		{"array index", KindArray, 7},
		{"adb index", KindADB, 1},
		{"intref index", KindIntRef, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(tt.kind, tt.payload)
			if h.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", h.Kind(), tt.kind)
			}
			if h.Payload() != tt.payload {
				t.Errorf("Payload() = %d, want %d", h.Payload(), tt.payload)
			}
		})
	}
}

func TestPayloadTruncation(t *testing.T) {
	h := New(KindBlob, payloadMask+5)
	if h.Payload() != 4 {
		t.Errorf("expected payload to wrap within 28 bits, got %d", h.Payload())
	}
}

func TestNullHandle(t *testing.T) {
	if !Null.IsNull() {
		t.Fatal("Null.IsNull() = false")
	}
	if Null.Kind() != KindNull {
		t.Errorf("Null.Kind() = %v, want %v", Null.Kind(), KindNull)
	}
	h := New(KindInt, 0)
	if h.IsNull() {
		t.Error("an explicit zero INT handle must not equal Null")
	}
}

func TestNewErrorNeverZeroCode(t *testing.T) {
	h := NewError(0)
	if !h.IsError() {
		t.Fatal("expected error handle")
	}
	if h.ErrorCode() != ErrUnknown {
		t.Errorf("ErrorCode() = %v, want %v", h.ErrorCode(), ErrUnknown)
	}
}

func TestErrorStickiness(t *testing.T) {
	h := NewError(ErrDepFormat)
	if !h.IsError() {
		t.Fatal("expected IsError() to be true")
	}
	if h.ErrorCode() != ErrDepFormat {
		t.Errorf("ErrorCode() = %v, want %v", h.ErrorCode(), ErrDepFormat)
	}
	other := New(KindInt, 5)
	if other.IsError() {
		t.Error("non-error handle reported IsError() = true")
	}
	if other.ErrorCode() != 0 {
		t.Errorf("ErrorCode() on non-error handle = %v, want 0", other.ErrorCode())
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindNull, "null"},
		{KindError, "error"},
		{KindInt, "int"},
		{KindBlob, "blob"},
		{KindObject, "object"},
		{KindArray, "array"},
		{KindADB, "adb"},
		{KindIntRef, "intref"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
