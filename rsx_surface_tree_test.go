package rsxsurface

import "testing"

func TestOnWriteZeroMarksOverlappingSurfaceDirty(t *testing.T) {
	store, _, _ := newTestStore()
	bigGeom := SurfaceGeometry{Width: 256, Height: 256, NativePitch: 1024, RSXPitch: 1024, Bpp: 4}
	smallGeom := SurfaceGeometry{Width: 16, Height: 16, NativePitch: 64, RSXPitch: 64, Bpp: 4}

	store.BindAddressAsColor(nil, 0, 0x400000, ColorA8R8G8B8, bigGeom, AACenter1Sample)

	small, err := store.backend.CreateNewSurface(0x400400, ColorA8R8G8B8, smallGeom, AACenter1Sample)
	if err != nil {
		t.Fatalf("create small surface: %v", err)
	}
	store.colorMap[0x400400] = small
	small.Descriptor().dirty = false

	// Registering the small surface changed the memory structure; without
	// a cache_tag bump on_write(0) sees write_tag == cache_tag and returns.
	store.NotifyMemoryStructureChanged()
	store.OnWrite(0)

	if !small.Descriptor().IsDirty() {
		t.Fatalf("on_write(0) did not mark the contained surface dirty")
	}
}

func TestOnWriteFilteredByExactBoundAddress(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}

	h, _ := store.BindAddressAsColor(nil, 0, 0x410000, ColorA8R8G8B8, geometry, AACenter1Sample)

	store.OnWrite(0x410000)
	if h.Descriptor().IsDirty() {
		t.Fatalf("on_write at the bound surface's own address left it dirty instead of clearing it")
	}
}

func TestOnWriteMismatchedAddressIsNoop(t *testing.T) {
	store, _, _ := newTestStore()
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}

	h, _ := store.BindAddressAsColor(nil, 0, 0x420000, ColorA8R8G8B8, geometry, AACenter1Sample)
	h.Descriptor().dirty = true

	store.OnWrite(0x900000)

	if !h.Descriptor().IsDirty() {
		t.Fatalf("on_write at an unrelated address altered a bound surface it shouldn't touch")
	}
}

func TestGenerateRenderTargetMemoryTreeCoversContainedSurfaces(t *testing.T) {
	store, _, _ := newTestStore()
	bigGeom := SurfaceGeometry{Width: 256, Height: 256, NativePitch: 1024, RSXPitch: 1024, Bpp: 4}
	smallGeom := SurfaceGeometry{Width: 16, Height: 16, NativePitch: 64, RSXPitch: 64, Bpp: 4}

	store.BindAddressAsColor(nil, 0, 0x430000, ColorA8R8G8B8, bigGeom, AACenter1Sample)
	small, err := store.backend.CreateNewSurface(0x430400, ColorA8R8G8B8, smallGeom, AACenter1Sample)
	if err != nil {
		t.Fatalf("create small surface: %v", err)
	}
	store.colorMap[0x430400] = small

	store.generateRenderTargetMemoryTree()

	if len(store.memoryTree) == 0 {
		t.Fatalf("memory tree empty despite a contained surface")
	}
	found := false
	for _, block := range store.memoryTree {
		if block.memoryAddress != 0x430000 {
			continue
		}
		for _, addr := range block.overlapping {
			if addr == 0x430400 {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("memory tree block for 0x430000 does not list the contained surface at 0x430400")
	}
}
