// rsx_surface_backend.go - Backend Traits (§6.1)

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
rsx_surface_backend.go - Backend Traits (§6.1)

The capability interface the Bind Engine, Overlap Engine, and Readback
Pack drive a concrete host graphics backend through. Mirrors the
teacher's VoodooBackend/VoodooEngine split: one small interface, more
than one concrete implementation, and a factory that builds whichever
one the caller names (the headless build hands back the dependency-free
one when Vulkan is requested).
*/

package rsxsurface

import "fmt"

// CommandContext is whatever handle a backend needs to record commands
// against (a command buffer, a batch, or nothing for an immediate-mode
// backend). The store never inspects it.
type CommandContext any

// DownloadObject is an opaque, backend-owned handle to an in-flight or
// completed download; MapDownloadedBuffer/UnmapDownloadedBuffer are the
// only operations the store performs on it.
type DownloadObject any

// AddressRange is a half-open [Min, Max) guest address interval.
type AddressRange struct {
	Min uint32
	Max uint32
}

// NewAddressRangeStartLength builds the range [start, start+length).
func NewAddressRangeStartLength(start, length uint32) AddressRange {
	return AddressRange{Min: start, Max: start + length}
}

// Valid reports whether the range is non-empty.
func (r AddressRange) Valid() bool {
	return r.Max > r.Min
}

// Length returns the range's size in bytes.
func (r AddressRange) Length() uint32 {
	if !r.Valid() {
		return 0
	}
	return r.Max - r.Min
}

// Overlaps reports whether r and other share any address.
func (r AddressRange) Overlaps(other AddressRange) bool {
	return r.Min < other.Max && other.Min < r.Max
}

// Extend grows r to also cover other, if other is valid.
func (r AddressRange) Extend(other AddressRange) AddressRange {
	if !other.Valid() {
		return r
	}
	if !r.Valid() {
		return other
	}
	out := r
	if other.Min < out.Min {
		out.Min = other.Min
	}
	if other.Max > out.Max {
		out.Max = other.Max
	}
	return out
}

// SurfaceHandle is a backend-owned render target: a descriptor plus
// whatever the backend needs to draw into and sample from it.
type SurfaceHandle interface {
	Descriptor() *SurfaceDescriptor
	Geometry() SurfaceGeometry
	IsDepthSurface() bool

	// ReadBarrier inserts whatever synchronization the backend needs
	// before this surface is sampled as a texture after being written
	// as a render target.
	ReadBarrier(ctx CommandContext)
}

// SurfaceBackend is the full capability set the Bind Engine and
// Readback Pack require of a host graphics backend (§6.1).
type SurfaceBackend interface {
	// CreateNewSurface allocates a new color render target at address
	// for the given format/geometry/antialias mode.
	CreateNewSurface(address uint32, format ColorFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error)

	// CreateNewDepthSurface allocates a new depth/stencil render target.
	CreateNewDepthSurface(address uint32, format DepthFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error)

	// ColorHasFormatWidthHeight reports whether an existing color
	// surface already matches the requested format and dimensions,
	// letting the Bind Engine reuse it instead of recreating it.
	ColorHasFormatWidthHeight(handle SurfaceHandle, format ColorFormat, geometry SurfaceGeometry) bool

	// DepthHasFormatWidthHeight is the depth-surface analogue.
	DepthHasFormatWidthHeight(handle SurfaceHandle, format DepthFormat, geometry SurfaceGeometry) bool

	// SurfaceIsPitchCompatible reports whether handle's existing row
	// pitch can serve the requested pitch without reallocation.
	SurfaceIsPitchCompatible(handle SurfaceHandle, pitch uint16) bool

	// PrepareColorForDrawing transitions a color surface into a state
	// the backend can render into.
	PrepareColorForDrawing(ctx CommandContext, handle SurfaceHandle)

	// PrepareColorForSampling transitions a color surface into a state
	// it can be read as a texture from.
	PrepareColorForSampling(ctx CommandContext, handle SurfaceHandle)

	// PrepareDepthForDrawing is the depth-surface analogue of
	// PrepareColorForDrawing.
	PrepareDepthForDrawing(ctx CommandContext, handle SurfaceHandle)

	// PrepareDepthForSampling is the depth-surface analogue of
	// PrepareColorForSampling.
	PrepareDepthForSampling(ctx CommandContext, handle SurfaceHandle)

	// NotifySurfaceInvalidated tells the backend a surface left the
	// registry and can release any resource it is not still holding
	// for potential reuse from the invalidated pool.
	NotifySurfaceInvalidated(handle SurfaceHandle)

	// NotifySurfacePersist tells the backend a surface is live again:
	// either pulled back out of the invalidated pool for reuse, or
	// matched in place at its existing address by a bind.
	NotifySurfacePersist(handle SurfaceHandle)

	// InvalidateSurfaceContents discards handle's pixels without
	// releasing the backend resource, ahead of a rebind at the same
	// address with different geometry.
	InvalidateSurfaceContents(ctx CommandContext, handle SurfaceHandle)

	// GetSurfaceInfo returns backend-specific metadata, used by tests
	// and diagnostics only; the store never inspects the result.
	GetSurfaceInfo(handle SurfaceHandle) any

	// IssueColorDownloadCommand begins an asynchronous readback of a
	// color surface's current contents.
	IssueColorDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error)

	// IssueDepthDownloadCommand begins an asynchronous readback of a
	// depth surface's depth channel.
	IssueDepthDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error)

	// IssueStencilDownloadCommand begins an asynchronous readback of a
	// depth surface's stencil channel (DepthZ24S8 only).
	IssueStencilDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error)

	// MapDownloadedBuffer blocks until obj completes and returns its
	// raw, backend-pitched bytes.
	MapDownloadedBuffer(obj DownloadObject) ([]byte, error)

	// UnmapDownloadedBuffer releases obj's backing storage.
	UnmapDownloadedBuffer(obj DownloadObject)

	// Destroy releases every backend resource the store is holding.
	Destroy()
}

// BackendKind selects which concrete SurfaceBackend NewSurfaceBackend
// constructs.
type BackendKind int

const (
	BackendVulkan BackendKind = iota
	BackendEbiten
)

// NewSurfaceBackend builds the requested backend, mirroring the
// teacher's NewVoodooEngine comment: "Vulkan, falls back to software
// internally if Vulkan unavailable." Here the fallback is explicit
// rather than silent, since a render-surface store has no frame loop
// of its own to paper over a degraded backend.
func NewSurfaceBackend(kind BackendKind, formats FormatRegistry) (SurfaceBackend, error) {
	switch kind {
	case BackendVulkan:
		return newVulkanBackendForBuild(formats)
	case BackendEbiten:
		return NewEbitenSurfaceBackend(formats), nil
	default:
		return nil, &SurfaceStoreError{
			Operation: "NewSurfaceBackend",
			Details:   fmt.Sprintf("unknown backend kind %d", kind),
		}
	}
}
