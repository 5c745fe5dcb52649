package rsxsurface

import "testing"

func TestReadColorTargetsPacksTightly(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 10, Height: 4, NativePitch: 40, RSXPitch: 40, Bpp: 4}

	store.BindAddressAsColor(nil, 0, 0x430000, ColorA8R8G8B8, geometry, AACenter1Sample)

	out, err := store.ReadColorTargets(nil)
	if err != nil {
		t.Fatalf("ReadColorTargets: %v", err)
	}
	if out[0] == nil {
		t.Fatalf("slot 0 produced no data")
	}
	wantLen := int(geometry.Height) * int(geometry.Width) * 4
	if len(out[0]) != wantLen {
		t.Fatalf("packed output length = %d, want %d", len(out[0]), wantLen)
	}
}

func TestReadDepthStencilTargetSkipsStencilForZ16(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 16, Height: 8, NativePitch: 32, RSXPitch: 32, Bpp: 2}

	store.BindAddressAsDepth(nil, 0x440000, DepthZ16, geometry, AACenter1Sample)

	depth, stencil, err := store.ReadDepthStencilTarget(nil, DepthZ16)
	if err != nil {
		t.Fatalf("ReadDepthStencilTarget: %v", err)
	}
	if depth == nil {
		t.Fatalf("no depth bytes returned")
	}
	if stencil != nil {
		t.Fatalf("stencil bytes returned for a DepthZ16 surface")
	}
}

func TestReadDepthStencilTargetIncludesStencilForZ24S8(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 16, Height: 8, NativePitch: 64, RSXPitch: 64, Bpp: 4}

	store.BindAddressAsDepth(nil, 0x450000, DepthZ24S8, geometry, AACenter1Sample)

	depth, stencil, err := store.ReadDepthStencilTarget(nil, DepthZ24S8)
	if err != nil {
		t.Fatalf("ReadDepthStencilTarget: %v", err)
	}
	if depth == nil || stencil == nil {
		t.Fatalf("DepthZ24S8 must produce both depth and stencil bytes")
	}
}

func TestReadDepthStencilTargetErrorsWithNoDepthBound(t *testing.T) {
	store, _, _ := newTestStore()
	if _, _, err := store.ReadDepthStencilTarget(nil, DepthZ16); err == nil {
		t.Fatalf("expected an error with no depth surface bound")
	}
}
