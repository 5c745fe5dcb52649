package rsxsurface

import "testing"

func TestSurfaceDescriptorQueueAndSyncTag(t *testing.T) {
	mem := NewFlatGuestMemory(1 << 20)
	geometry := SurfaceGeometry{Width: 64, Height: 64, NativePitch: 256, RSXPitch: 256, Bpp: 4}
	d := NewSurfaceDescriptor(geometry)

	base := uint32(0x1000)
	d.QueueTag(base)
	d.SyncTag(mem)

	if d.IsDirty() {
		t.Fatalf("descriptor dirty immediately after SyncTag")
	}
	if !d.Test(mem) {
		t.Fatalf("Test() false against unmodified memory")
	}
}

func TestSurfaceDescriptorDetectsMismatch(t *testing.T) {
	mem := NewFlatGuestMemory(1 << 20)
	geometry := SurfaceGeometry{Width: 64, Height: 64, NativePitch: 256, RSXPitch: 256, Bpp: 4}
	d := NewSurfaceDescriptor(geometry)

	base := uint32(0x2000)
	d.QueueTag(base)
	d.SyncTag(mem)

	mem.WriteTagWord(base, 0xDEADBEEFCAFEBABE)

	if d.Test(mem) {
		t.Fatalf("Test() true after guest write bypassed the surface")
	}
}

func TestSurfaceDescriptorOnWriteClearsDirtyAndStampsTag(t *testing.T) {
	mem := NewFlatGuestMemory(1 << 20)
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}
	d := NewSurfaceDescriptor(geometry)
	d.QueueTag(0x3000)
	d.dirty = true
	d.SetOldContents(&fakeSurfaceHandle{descriptor: NewSurfaceDescriptor(geometry)}, AddressRange{})

	d.OnWrite(7, mem)
	if d.IsDirty() {
		t.Fatalf("OnWrite left the descriptor dirty")
	}
	if d.LastUseTag() != 7 {
		t.Fatalf("OnWrite did not stamp last-use tag: got %d", d.LastUseTag())
	}
	if prior, _ := d.TakeOldContents(); prior != nil {
		t.Fatalf("OnWrite did not clear old_contents")
	}
}

func TestSurfaceDescriptorOnWriteZeroTagPreservesLastUseTag(t *testing.T) {
	mem := NewFlatGuestMemory(1 << 20)
	geometry := SurfaceGeometry{Width: 32, Height: 32, NativePitch: 128, RSXPitch: 128, Bpp: 4}
	d := NewSurfaceDescriptor(geometry)
	d.QueueTag(0x3000)
	d.SetLastUseTag(42)

	d.OnWrite(0, mem)
	if d.LastUseTag() != 42 {
		t.Fatalf("OnWrite(0, ...) changed last-use tag: got %d, want 42", d.LastUseTag())
	}
	if d.IsDirty() {
		t.Fatalf("OnWrite(0, ...) left the descriptor dirty")
	}
}

func TestAAModeFactorsAndScales(t *testing.T) {
	cases := []struct {
		mode          AAMode
		wantFactor    uint32
		wantScaleX    uint32
		wantScaleY    uint32
	}{
		{AACenter1Sample, 1, 1, 1},
		{AADiagonalCentered2Samples, 1, 2, 1},
		{AASquareCentered4Samples, 2, 2, 2},
		{AARotatedCentered4Samples, 2, 2, 2},
	}
	for _, c := range cases {
		if got := c.mode.aaFactor(); got != c.wantFactor {
			t.Errorf("mode %d aaFactor() = %d, want %d", c.mode, got, c.wantFactor)
		}
		if got := c.mode.scaleX(); got != c.wantScaleX {
			t.Errorf("mode %d scaleX() = %d, want %d", c.mode, got, c.wantScaleX)
		}
		if got := c.mode.scaleY(); got != c.wantScaleY {
			t.Errorf("mode %d scaleY() = %d, want %d", c.mode, got, c.wantScaleY)
		}
	}
}
