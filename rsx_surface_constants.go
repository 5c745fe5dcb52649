// rsx_surface_constants.go - Render surface store constants

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
rsx_surface_constants.go - Format, antialias-mode, and size constants

Mirrors the RSX GCM enums the store is built against: surface antialias
modes, color/depth pixel formats, and MRT layout tags. Offsets here are
not hardware register addresses (there is no CPU bus in this module) -
they are the plain enum values the Bind Engine and Format Registry
switch on.
*/

package rsxsurface

// AAMode is the antialias mode in effect for a surface's most recent
// draw (write_aa_mode) or sample (read_aa_mode).
type AAMode int

const (
	AACenter1Sample AAMode = iota
	AADiagonalCentered2Samples
	AASquareCentered4Samples
	AARotatedCentered4Samples
)

// aaFactor returns the bind-time range-extension multiplier for a mode:
// 1 for modes at or below diagonal_centered_2_samples, 2 otherwise.
func (m AAMode) aaFactor() uint32 {
	if m <= AADiagonalCentered2Samples {
		return 1
	}
	return 2
}

// scaleX returns the overlap-engine horizontal sample scale: only
// center_1_sample is unscaled, every other mode doubles X.
func (m AAMode) scaleX() uint32 {
	if m > AACenter1Sample {
		return 2
	}
	return 1
}

// scaleY returns the overlap-engine vertical sample scale: modes at or
// below diagonal_centered_2_samples are unscaled.
func (m AAMode) scaleY() uint32 {
	if m > AADiagonalCentered2Samples {
		return 2
	}
	return 1
}

// ColorFormat enumerates the color render-target pixel layouts the
// store and Readback Pack understand.
type ColorFormat int

const (
	ColorA8B8G8R8 ColorFormat = iota
	ColorX8B8G8R8O8B8G8R8
	ColorX8B8G8R8Z8B8G8R8
	ColorA8R8G8B8
	ColorX8R8G8B8O8R8G8B8
	ColorX8R8G8B8Z8R8G8B8
	ColorX32
	ColorB8
	ColorG8B8
	ColorR5G6B5
	ColorX1R5G5B5O1R5G5B5
	ColorX1R5G5B5Z1R5G5B5
	ColorW32Z32Y32X32
	ColorW16Z16Y16X16
)

// DepthFormat enumerates the depth/stencil render-target layouts.
type DepthFormat int

const (
	DepthZ16 DepthFormat = iota
	DepthZ24S8
)

// SurfaceTarget is the MRT layout tag: which of the 4 color slots are
// active for a prepare_render_target call.
type SurfaceTarget int

const (
	SurfaceTargetNone SurfaceTarget = iota
	SurfaceTargetA
	SurfaceTargetsAB
	SurfaceTargetsABC
	SurfaceTargetsABCD
)

const (
	// MaxColorSurfaces is the number of color bind slots (4 color + 1 depth).
	MaxColorSurfaces = 4

	// StencilRowAlignment is the fixed row stride alignment used for
	// stencil downloads and, per original_source/surface_store.h, for
	// the depth row regardless of element size.
	StencilRowAlignment = 256

	// DefaultInvalidatedPoolCap bounds the invalidated-resources queue;
	// zero means unbounded (the §9 guidance: implementations may bound
	// the pool but must service the reuse scan before dropping).
	DefaultInvalidatedPoolCap = 0
)
