package rsxsurface

import "testing"

func TestAddressRangeValidAndLength(t *testing.T) {
	r := NewAddressRangeStartLength(0x1000, 0x100)
	if !r.Valid() {
		t.Fatalf("non-empty range reported invalid")
	}
	if r.Length() != 0x100 {
		t.Fatalf("Length() = %#x, want 0x100", r.Length())
	}

	var empty AddressRange
	if empty.Valid() {
		t.Fatalf("zero-value range reported valid")
	}
	if empty.Length() != 0 {
		t.Fatalf("zero-value range Length() = %d, want 0", empty.Length())
	}
}

func TestAddressRangeOverlaps(t *testing.T) {
	a := NewAddressRangeStartLength(0x1000, 0x100)
	b := NewAddressRangeStartLength(0x1080, 0x100)
	c := NewAddressRangeStartLength(0x2000, 0x100)

	if !a.Overlaps(b) {
		t.Fatalf("overlapping ranges reported as disjoint")
	}
	if a.Overlaps(c) {
		t.Fatalf("disjoint ranges reported as overlapping")
	}
	// Touching but not overlapping (half-open, [Max] excluded).
	d := NewAddressRangeStartLength(0x1100, 0x100)
	if a.Overlaps(d) {
		t.Fatalf("adjacent half-open ranges reported as overlapping")
	}
}

func TestAddressRangeExtend(t *testing.T) {
	a := NewAddressRangeStartLength(0x1000, 0x100)
	b := NewAddressRangeStartLength(0x2000, 0x100)

	merged := a.Extend(b)
	if merged.Min != 0x1000 || merged.Max != 0x2100 {
		t.Fatalf("Extend produced %+v, want Min=0x1000 Max=0x2100", merged)
	}

	var empty AddressRange
	if got := a.Extend(empty); got != a {
		t.Fatalf("extending with an invalid range changed the result: %+v", got)
	}
	if got := empty.Extend(a); got != a {
		t.Fatalf("extending an invalid range with a valid one did not adopt it: %+v", got)
	}
}

func TestSurfaceStoreErrorFormatting(t *testing.T) {
	plain := &SurfaceStoreError{Operation: "Bind", Details: "address already bound"}
	if plain.Error() == "" {
		t.Fatalf("Error() returned empty string")
	}
	if plain.Unwrap() != nil {
		t.Fatalf("Unwrap() on an error with no wrapped cause returned non-nil")
	}

	inner := &SurfaceStoreError{Operation: "Readback", Details: "download failed"}
	wrapped := &SurfaceStoreError{Operation: "Bind", Details: "nested", Err: inner}
	if wrapped.Unwrap() != inner {
		t.Fatalf("Unwrap() did not return the wrapped error")
	}
}

func TestNewSurfaceBackendUnknownKind(t *testing.T) {
	formats := NewStaticFormatRegistry()
	if _, err := NewSurfaceBackend(BackendKind(99), formats); err == nil {
		t.Fatalf("expected an error for an unknown backend kind")
	}
}

func TestNewSurfaceBackendEbiten(t *testing.T) {
	formats := NewStaticFormatRegistry()
	backend, err := NewSurfaceBackend(BackendEbiten, formats)
	if err != nil {
		t.Fatalf("NewSurfaceBackend(BackendEbiten): %v", err)
	}
	if backend == nil {
		t.Fatalf("NewSurfaceBackend(BackendEbiten) returned a nil backend with no error")
	}
}
