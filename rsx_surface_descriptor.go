// rsx_surface_descriptor.go - Surface Descriptor (§4.1)

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/intuitionamiga/rsxsurface

License: GPLv3 or later
*/

/*
rsx_surface_descriptor.go - Surface Descriptor (§4.1)

The bookkeeping every bound surface carries regardless of backend: the
memory-tag fingerprint used to detect guest writes that bypassed the
bind engine, the last-use tag for LRU-style tie-breaking in the Overlap
Engine, the dirty flag, and the antialias mode recorded at the last
bind so the next sample can tell whether a re-render is needed.
*/

package rsxsurface

// SurfaceGeometry is the address-independent shape of a bound surface.
type SurfaceGeometry struct {
	Width       uint16
	Height      uint16
	NativePitch uint16 // host-side row stride; QueueTag uses it as a row's byte width
	RSXPitch    uint16 // row stride in guest memory (sample rows, surface ranges)
	Bpp         uint8
}

// memoryTagSample is one of the 5 X-pattern probe points the
// fingerprint protocol samples: a guest address and the 64-bit word
// observed there at bind time.
type memoryTagSample struct {
	address uint32
	value   uint64
}

// SurfaceDescriptor is the per-surface state the Bind Engine, Overlap
// Engine, and Memory-Tree Builder all read and mutate. It carries no
// backend resource handle itself - that lives behind the SurfaceHandle
// interface a backend returns alongside one of these.
type SurfaceDescriptor struct {
	Geometry SurfaceGeometry

	lastUseTag uint64
	samples    [5]memoryTagSample
	dirty      bool

	oldContents     SurfaceHandle
	oldContentsArea AddressRange

	readAAMode  AAMode
	writeAAMode AAMode
}

// NewSurfaceDescriptor builds a descriptor for a freshly created
// surface; it starts dirty until the first SyncTag records its samples.
func NewSurfaceDescriptor(geometry SurfaceGeometry) *SurfaceDescriptor {
	return &SurfaceDescriptor{Geometry: geometry, dirty: true}
}

// QueueTag computes the 5 X-pattern sample addresses from base and the
// descriptor's geometry (spec.md §3): corners plus center. When
// native_pitch < 16 only sample 0 is armed, and when height <= 1 only
// samples 0 and 1 are; every unused sample collapses onto base.
func (d *SurfaceDescriptor) QueueTag(base uint32) {
	g := d.Geometry
	nativePitch := uint32(g.NativePitch)
	rsxPitch := uint32(g.RSXPitch)
	height := uint32(g.Height)

	addrs := [5]uint32{base, base, base, base, base}
	addrs[0] = base
	if nativePitch >= 16 {
		addrs[1] = base + nativePitch - 8
	} else {
		addrs[1] = base
	}
	if height > 0 {
		addrs[2] = base + (height-1)*rsxPitch
	}
	if height > 0 && nativePitch >= 8 {
		addrs[3] = base + (height-1)*rsxPitch + nativePitch - 8
	} else {
		addrs[3] = addrs[2]
	}
	addrs[4] = base + (height/2)*rsxPitch + nativePitch/2
	if nativePitch < 16 {
		addrs = [5]uint32{base, base, base, base, base}
	} else if height <= 1 {
		addrs[2], addrs[3], addrs[4] = base, base, base
	}

	for i, a := range addrs {
		d.samples[i].address = a
	}
}

// SyncTag re-reads every sample address and stores the observed word,
// clearing the dirty flag: this is the "surface matches memory" baseline
// taken right after a draw or a download.
func (d *SurfaceDescriptor) SyncTag(mem GuestMemoryWindow) {
	for i := range d.samples {
		d.samples[i].value = mem.ReadTagWord(d.samples[i].address)
	}
	d.dirty = false
}

// Test reports whether every sample still matches guest memory. The
// first mismatching sample is logged and Test returns false (the probe
// is a heuristic, not proof); a surface already flagged dirty only gets
// a warning logged and is checked as usual. Neither is ever escalated
// to an error.
func (d *SurfaceDescriptor) Test(mem GuestMemoryWindow) bool {
	if d.dirty {
		logf("surface descriptor: Test() on a dirty surface")
	}
	for i := range d.samples {
		if mem.ReadTagWord(d.samples[i].address) != d.samples[i].value {
			logf("surface descriptor: fingerprint mismatch at sample %d (addr=%#x)", i, d.samples[i].address)
			return false
		}
	}
	return true
}

// OnWrite is the descriptor half of surface_store::on_write (spec
// §4.1): called on a surface that was just finished drawing into, so
// it re-syncs its own fingerprint against current guest memory rather
// than being marked dirty - it is the *other*, smaller surfaces this
// bound surface's memory happens to alias that get marked dirty, by
// the caller, before this runs. tag updates last_use_tag only if
// nonzero; sync_tag, the read/write AA mode carry-over, and the dirty/
// old-contents clear always happen.
func (d *SurfaceDescriptor) OnWrite(tag uint64, mem GuestMemoryWindow) {
	if tag != 0 {
		d.lastUseTag = tag
	}
	d.SyncTag(mem)
	d.readAAMode = d.writeAAMode
	d.dirty = false
	d.oldContents = nil
}

// LastUseTag returns the tag recorded at this surface's most recent
// write or bind, used by the Overlap Engine to break ties between
// otherwise-equal candidate regions.
func (d *SurfaceDescriptor) LastUseTag() uint64 {
	return d.lastUseTag
}

// SetLastUseTag stamps the descriptor at bind time.
func (d *SurfaceDescriptor) SetLastUseTag(tag uint64) {
	d.lastUseTag = tag
}

// IsDirty reports the descriptor's last-known dirty state without
// re-sampling guest memory.
func (d *SurfaceDescriptor) IsDirty() bool {
	return d.dirty
}

// SetWriteAAMode stamps the antialias mode a bind call just
// established. Called on every bind_address_as_color/depth regardless
// of whether the surface was freshly created, reused from the
// invalidated pool, or matched in place - write_aa_mode always
// reflects the most recent bind, never just the surface's first one.
func (d *SurfaceDescriptor) SetWriteAAMode(mode AAMode) {
	d.writeAAMode = mode
}

// SaveAAMode implements save_aa_mode (spec §4.1): called when a surface
// transitions from draw target to sampleable. read_aa_mode - which
// drives the Overlap Engine's scale_x/scale_y projection - takes over
// write_aa_mode's value, and write_aa_mode resets to non-AA until the
// next bind sets it again.
func (d *SurfaceDescriptor) SaveAAMode() {
	d.readAAMode = d.writeAAMode
	d.writeAAMode = AACenter1Sample
}

// ReadAAMode returns the antialias mode in effect for sampling.
func (d *SurfaceDescriptor) ReadAAMode() AAMode {
	return d.readAAMode
}

// SetOldContents records a prior surface and the address range it
// covered; OnWrite clears the record. The bind path never calls it and
// no backend reads it, so no pixels are carried into a new surface.
func (d *SurfaceDescriptor) SetOldContents(prior SurfaceHandle, area AddressRange) {
	d.oldContents = prior
	d.oldContentsArea = area
}

// TakeOldContents returns and clears the recorded prior surface; no
// backend in this package calls it.
func (d *SurfaceDescriptor) TakeOldContents() (SurfaceHandle, AddressRange) {
	prior, area := d.oldContents, d.oldContentsArea
	d.oldContents = nil
	return prior, area
}
