// rsx_surface_registry.go - Surface Registry (§4.2 data half)

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
rsx_surface_registry.go - Surface Registry (§4.2 data half)

Holds every live color/depth surface keyed by guest address, the 4+1
bound slots the Bind Engine writes into, and the invalidated-resources
pool the Bind Engine scans before allocating anything new. Mirrors
surface_store<Traits>'s m_render_targets_storage/m_depth_stencil_storage/
m_bound_render_targets/m_bound_depth_stencil/invalidated_resources.
*/

package rsxsurface

import (
	"container/list"
	"sync/atomic"
)

var sharedTagCounter atomic.Uint64

// nextSharedTag returns a process-wide monotonically increasing tag,
// the Go equivalent of rsx::get_shared_tag(): every bind stamp and
// every cache_tag bump draws from a single counter so last-use ordering
// is total across every surface in the store. OnWrite draws no tag of
// its own; it reuses cache_tag.
func nextSharedTag() uint64 {
	return sharedTagCounter.Add(1)
}

// invalidatedEntry is what the invalidated-resources pool actually
// stores: the evicted surface, the address range it was occupying, and
// whether it is a depth surface. The reuse scan matches on the kind and
// the caller's predicate only; the range is recorded but not consulted.
type invalidatedEntry struct {
	handle SurfaceHandle
	area   AddressRange
	depth  bool
}

// SurfaceStoreConfig configures a new store; every field has a zero
// value that behaves reasonably (unbounded invalidated pool).
type SurfaceStoreConfig struct {
	// MaxInvalidatedPool bounds the invalidated-resources queue; 0 means
	// unbounded.
	MaxInvalidatedPool int
}

// SurfaceStore is the render-surface cache itself: the single
// mediating structure between guest-addressed render targets and a
// host backend's concrete image resources.
type SurfaceStore struct {
	backend SurfaceBackend
	mem     GuestMemoryWindow
	formats FormatRegistry
	cfg     SurfaceStoreConfig

	colorMap map[uint32]SurfaceHandle
	depthMap map[uint32]SurfaceHandle

	boundColor [MaxColorSurfaces]SurfaceHandle
	boundDepth SurfaceHandle

	invalidated *list.List // of *invalidatedEntry

	colorRange AddressRange
	depthRange AddressRange

	cacheTag  uint64
	writeTag  uint64
	memoryTag uint64

	memoryTree []memoryTreeBlock // one entry per bound surface with a nonempty overlapping set
}

// NewSurfaceStore builds an empty store over backend, reading guest
// memory through mem and consulting formats for layout/pitch answers.
func NewSurfaceStore(backend SurfaceBackend, mem GuestMemoryWindow, formats FormatRegistry, cfg SurfaceStoreConfig) *SurfaceStore {
	return &SurfaceStore{
		backend:     backend,
		mem:         mem,
		formats:     formats,
		cfg:         cfg,
		colorMap:    make(map[uint32]SurfaceHandle),
		depthMap:    make(map[uint32]SurfaceHandle),
		invalidated: list.New(),
	}
}

// ColorAt returns the color surface registered at address, if any.
func (s *SurfaceStore) ColorAt(address uint32) (SurfaceHandle, bool) {
	h, ok := s.colorMap[address]
	return h, ok
}

// DepthAt returns the depth surface registered at address, if any.
func (s *SurfaceStore) DepthAt(address uint32) (SurfaceHandle, bool) {
	h, ok := s.depthMap[address]
	return h, ok
}

// BoundColor returns the color surface currently bound in rtt slot i,
// or nil if that slot isn't active for the current layout.
func (s *SurfaceStore) BoundColor(i int) SurfaceHandle {
	if i < 0 || i >= MaxColorSurfaces {
		return nil
	}
	return s.boundColor[i]
}

// BoundDepth returns the currently bound depth surface, or nil.
func (s *SurfaceStore) BoundDepth() SurfaceHandle {
	return s.boundDepth
}

// AddressIsBound reports whether address is any of the currently bound
// color slots or the bound depth surface (§4.6).
func (s *SurfaceStore) AddressIsBound(address uint32) bool {
	for _, h := range s.boundColor {
		if h == nil {
			continue
		}
		if colorAddress, ok := s.addressOf(h, false); ok && colorAddress == address {
			return true
		}
	}
	if s.boundDepth != nil {
		if depthAddress, ok := s.addressOf(s.boundDepth, true); ok && depthAddress == address {
			return true
		}
	}
	return false
}

// addressOf does the reverse map lookup the descriptor itself doesn't
// carry (the address is the map key, not a descriptor field, mirroring
// the original's storage-keyed-by-address design).
func (s *SurfaceStore) addressOf(handle SurfaceHandle, depth bool) (uint32, bool) {
	m := s.colorMap
	if depth {
		m = s.depthMap
	}
	for addr, h := range m {
		if h == handle {
			return addr, true
		}
	}
	return 0, false
}

// pushInvalidated moves a surface into the reuse pool, trimming the
// oldest entry first if the pool is bounded and full.
func (s *SurfaceStore) pushInvalidated(handle SurfaceHandle, area AddressRange, depth bool) {
	if s.cfg.MaxInvalidatedPool > 0 && s.invalidated.Len() >= s.cfg.MaxInvalidatedPool {
		front := s.invalidated.Front()
		if front != nil {
			evicted := front.Value.(*invalidatedEntry)
			s.backend.NotifySurfaceInvalidated(evicted.handle)
			s.invalidated.Remove(front)
		}
	}
	s.invalidated.PushBack(&invalidatedEntry{handle: handle, area: area, depth: depth})
	s.backend.NotifySurfaceInvalidated(handle)
}

// scanInvalidatedForReuse linearly scans the pool, oldest first, for a
// surface of the requested kind (color or depth) that also satisfies
// matches - the caller's format, size and pitch check - which the Bind
// Engine can hand back instead of allocating new.
func (s *SurfaceStore) scanInvalidatedForReuse(depth bool, matches func(SurfaceHandle) bool) (SurfaceHandle, bool) {
	for e := s.invalidated.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*invalidatedEntry)
		if entry.depth != depth {
			continue
		}
		if matches(entry.handle) {
			s.invalidated.Remove(e)
			s.backend.NotifySurfacePersist(entry.handle)
			return entry.handle, true
		}
	}
	return nil, false
}

// removeFromInvalidated drops handle from the pool without notifying
// persistence, used when a surface is being permanently discarded
// rather than rebound.
func (s *SurfaceStore) removeFromInvalidated(handle SurfaceHandle) bool {
	for e := s.invalidated.Front(); e != nil; e = e.Next() {
		if e.Value.(*invalidatedEntry).handle == handle {
			s.invalidated.Remove(e)
			return true
		}
	}
	return false
}
