// rsx_surface_overlap.go - Overlap Engine (§4.4)

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
rsx_surface_overlap.go - Overlap Engine (§4.4)

get_merged_texture_memory_region: given a texture's address range T,
find every bound/cached surface A whose range overlaps T, project A's
geometry into T's coordinate space accounting for each surface's
independent antialias scale, and return the set sorted by ascending
last-use tag then ascending area (oldest first). Grounded on
original_source/surface_store.h:892-1007.
*/

package rsxsurface

import "sort"

// SurfaceOverlapRegion is one candidate surface feeding a sampled
// texture read, with its source rectangle already projected into the
// requested texture's coordinate space.
type SurfaceOverlapRegion struct {
	Handle SurfaceHandle
	Depth  bool

	// SrcX, SrcY, SrcWidth, SrcHeight are the source surface's sample
	// rectangle in the surface's own pixel space.
	SrcX, SrcY, SrcWidth, SrcHeight uint32

	// DstX, DstY are where that rectangle lands within the requested
	// texture's footprint.
	DstX, DstY uint32
}

// GetMergedTextureMemoryRegion implements get_merged_texture_memory_region
// (spec §4.4): textureAddress/width/height/pitch describe the texture a
// shader is about to sample. A candidate surface is discarded unless
// its range overlaps and it is pitch-compatible with the query; the
// result is every surviving overlap, coordinate-projected (offsets
// always expressed against the query's own pitch, never the
// candidate's) and ordered by last-use tag (oldest first, as the
// original repacks textures oldest-to-newest so later surfaces win any
// pixel overlap).
func (s *SurfaceStore) GetMergedTextureMemoryRegion(ctx CommandContext, textureAddress uint32, width, height uint32, pitch uint32) []SurfaceOverlapRegion {
	target := NewAddressRangeStartLength(textureAddress, height*pitch)
	var out []SurfaceOverlapRegion
	var dirty []uint32

	project := func(addr uint32, h SurfaceHandle, depth bool) {
		g := h.Geometry()
		surfacePitch := uint32(g.RSXPitch)
		surfaceArea := NewAddressRangeStartLength(addr, uint32(g.Height)*surfacePitch)
		if !surfaceArea.Overlaps(target) {
			return
		}

		if !s.backend.SurfaceIsPitchCompatible(h, uint16(pitch)) {
			return
		}

		h.ReadBarrier(ctx)
		if !h.Descriptor().Test(s.mem) {
			dirty = append(dirty, addr)
			return
		}

		scaleX := h.Descriptor().ReadAAMode().scaleX()
		scaleY := h.Descriptor().ReadAAMode().scaleY()

		var region SurfaceOverlapRegion
		region.Handle = h
		region.Depth = depth

		availW, availH := width, height
		if addr <= textureAddress {
			// A's base is at or before T's base: the overlap starts
			// inside A, at a byte offset expressed against the query's
			// required pitch (spec §4.4: "src_y = (offset / RP) / scale_y"),
			// not the candidate's own row stride.
			byteOffset := textureAddress - addr
			rowOffset := byteOffset / pitch
			colOffsetBytes := byteOffset % pitch
			region.SrcY = rowOffset / scaleY
			region.SrcX = (colOffsetBytes / uint32(g.Bpp)) / scaleX
			region.DstX, region.DstY = 0, 0
		} else {
			// A's base is after T's base: T is partially covered
			// starting at an offset into T's own footprint.
			byteOffset := addr - textureAddress
			rowOffset := byteOffset / pitch
			colOffsetBytes := byteOffset % pitch
			region.DstY = rowOffset
			region.DstX = colOffsetBytes / (uint32(g.Bpp))
			region.SrcX, region.SrcY = 0, 0
			availW, availH = 0, 0
			if width > region.DstX {
				availW = width - region.DstX
			}
			if height > region.DstY {
				availH = height - region.DstY
			}
		}

		region.SrcWidth = availW / scaleX
		region.SrcHeight = availH / scaleY
		if uint32(g.Width) < region.SrcX+region.SrcWidth {
			if uint32(g.Width) > region.SrcX {
				region.SrcWidth = uint32(g.Width) - region.SrcX
			} else {
				region.SrcWidth = 0
			}
		}
		if uint32(g.Height) < region.SrcY+region.SrcHeight {
			if uint32(g.Height) > region.SrcY {
				region.SrcHeight = uint32(g.Height) - region.SrcY
			} else {
				region.SrcHeight = 0
			}
		}
		if region.SrcWidth == 0 || region.SrcHeight == 0 {
			return
		}

		out = append(out, region)
	}

	for addr, h := range s.colorMap {
		project(addr, h, false)
	}
	for addr, h := range s.depthMap {
		project(addr, h, true)
	}

	for _, addr := range dirty {
		s.InvalidateSurfaceAddress(ctx, addr)
	}

	if len(out) >= 2 {
		sort.SliceStable(out, func(i, j int) bool {
			ti := out[i].Handle.Descriptor().LastUseTag()
			tj := out[j].Handle.Descriptor().LastUseTag()
			if ti != tj {
				return ti < tj
			}
			areaI := out[i].SrcWidth * out[i].SrcHeight
			areaJ := out[j].SrcWidth * out[j].SrcHeight
			return areaI < areaJ
		})
	}
	return out
}
