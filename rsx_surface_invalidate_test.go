package rsxsurface

import "testing"

func TestInvalidateSurfaceAddressRemovesFromRegistry(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}

	// Bound at one address, then registered (unbound) at another, so
	// invalidating the second exercises the non-conflict path.
	store.BindAddressAsColor(nil, 0, 0x460000, ColorA8R8G8B8, geometry, AACenter1Sample)
	h, err := store.backend.CreateNewSurface(0x461000, ColorA8R8G8B8, geometry, AACenter1Sample)
	if err != nil {
		t.Fatalf("create unbound surface: %v", err)
	}
	store.colorMap[0x461000] = h

	if err := store.InvalidateSurfaceAddress(nil, 0x461000); err != nil {
		t.Fatalf("unexpected error invalidating an unbound registered surface: %v", err)
	}
	if _, ok := store.ColorAt(0x461000); ok {
		t.Fatalf("surface still registered after invalidation")
	}
}

func TestInvalidateSurfaceAddressReportsBindConflict(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}

	store.BindAddressAsColor(nil, 0, 0x470000, ColorA8R8G8B8, geometry, AACenter1Sample)

	err := store.InvalidateSurfaceAddress(nil, 0x470000)
	if err == nil {
		t.Fatalf("expected a recoverable error invalidating a still-bound surface")
	}
	if store.BoundColor(0) == nil {
		t.Fatalf("bind-while-invalidate conflict must be a no-op, but the bound slot was cleared")
	}
	if _, ok := store.ColorAt(0x470000); !ok {
		t.Fatalf("bind-while-invalidate conflict must be a no-op, but the surface was deregistered")
	}
}

func TestInvalidateSurfaceAddressUnknownIsNoop(t *testing.T) {
	store, _, _ := newTestStore()
	if err := store.InvalidateSurfaceAddress(nil, 0xFFFFFFF0); err != nil {
		t.Fatalf("invalidating an unregistered address returned an error: %v", err)
	}
}

func TestAddressIsBound(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}
	store.BindAddressAsColor(nil, 0, 0x480000, ColorA8R8G8B8, geometry, AACenter1Sample)

	if !store.AddressIsBound(0x480000) {
		t.Fatalf("bound color address not reported as bound")
	}
	if store.AddressIsBound(0x481000) {
		t.Fatalf("unrelated address reported as bound")
	}
}
