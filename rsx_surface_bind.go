// rsx_surface_bind.go - Bind Engine (§4.2, §4.3)

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
rsx_surface_bind.go - Bind Engine (§4.2, §4.3)

BindAddressAsColor/BindAddressAsDepth implement the 8-step protocol:
evict any alien (opposite-kind) surface overlapping the target address,
check for a compatible existing surface at that exact address, fall
back to the invalidated pool, and only then allocate new. The ordering
asymmetry between color and depth (prepare-for-drawing before
invalidate for color, after for depth) is preserved exactly as
original_source/surface_store.h has it - spec.md §9 marks this
deliberate, not a bug to fix.
*/

package rsxsurface

import "fmt"

// BindAddressAsColor implements bind_address_as_render_targets for a
// single rtt slot (spec §4.2). ctx is passed through to the backend's
// prepare/invalidate calls untouched.
func (s *SurfaceStore) BindAddressAsColor(ctx CommandContext, slot int, address uint32, format ColorFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	if slot < 0 || slot >= MaxColorSurfaces {
		return nil, &SurfaceStoreError{Operation: "BindAddressAsColor", Details: fmt.Sprintf("invalid rtt slot %d", slot)}
	}

	area := NewAddressRangeStartLength(address, uint32(geometry.Height)*uint32(geometry.RSXPitch)*aa.aaFactor())

	// Step 1: evict any alien (depth) surface overlapping this range -
	// a render target and a depth/stencil surface can never share bytes.
	s.evictAlienOverlaps(ctx, address, area, true)

	// Step 2: exact-address match against the existing color map.
	if existing, ok := s.colorMap[address]; ok {
		if s.backend.ColorHasFormatWidthHeight(existing, format, geometry) &&
			s.backend.SurfaceIsPitchCompatible(existing, geometry.RSXPitch) {
			s.backend.NotifySurfacePersist(existing)
			s.backend.PrepareColorForDrawing(ctx, existing)
			existing.Descriptor().SetWriteAAMode(aa)
			existing.Descriptor().SetLastUseTag(s.nextTag())
			s.boundColor[slot] = existing
			return existing, nil
		}
		// Incompatible surface squatting on the address: invalidate its
		// contents before freeing the slot for a fresh allocation. Color
		// path prepares for drawing before invalidating - the ordering
		// asymmetry spec.md §9 calls out as intentional.
		s.backend.PrepareColorForDrawing(ctx, existing)
		s.backend.InvalidateSurfaceContents(ctx, existing)
		delete(s.colorMap, address)
		s.pushInvalidated(existing, area, false)
	}

	// Step 3: scan the invalidated pool for a reusable surface.
	if reused, ok := s.scanInvalidatedForReuse(false, func(h SurfaceHandle) bool {
		return s.backend.ColorHasFormatWidthHeight(h, format, geometry) &&
			s.backend.SurfaceIsPitchCompatible(h, geometry.RSXPitch)
	}); ok {
		s.backend.PrepareColorForDrawing(ctx, reused)
		reused.Descriptor().QueueTag(address)
		reused.Descriptor().SyncTag(s.mem)
		reused.Descriptor().SetWriteAAMode(aa)
		reused.Descriptor().SetLastUseTag(s.nextTag())
		s.colorMap[address] = reused
		s.boundColor[slot] = reused
		s.colorRange = s.colorRange.Extend(area)
		return reused, nil
	}

	// Step 4: allocate new.
	created, err := s.backend.CreateNewSurface(address, format, geometry, aa)
	if err != nil {
		return nil, &SurfaceStoreError{Operation: "BindAddressAsColor", Details: "backend allocation failed", Err: err}
	}
	s.backend.PrepareColorForDrawing(ctx, created)
	created.Descriptor().QueueTag(address)
	created.Descriptor().SyncTag(s.mem)
	created.Descriptor().SetLastUseTag(s.nextTag())
	s.colorMap[address] = created
	s.boundColor[slot] = created
	s.colorRange = s.colorRange.Extend(area)
	return created, nil
}

// BindAddressAsDepth implements bind_address_as_depth_stencil (spec
// §4.2): identical shape to BindAddressAsColor, except the order of
// prepare-for-drawing and invalidate-contents is reversed for an
// incompatible existing surface (invalidate first, then prepare).
func (s *SurfaceStore) BindAddressAsDepth(ctx CommandContext, address uint32, format DepthFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	area := NewAddressRangeStartLength(address, uint32(geometry.Height)*uint32(geometry.RSXPitch)*aa.aaFactor())

	// Step 1: evict any alien (color) surface overlapping this range.
	s.evictAlienOverlaps(ctx, address, area, false)

	// Step 2: exact-address match.
	if existing, ok := s.depthMap[address]; ok {
		if s.backend.DepthHasFormatWidthHeight(existing, format, geometry) &&
			s.backend.SurfaceIsPitchCompatible(existing, geometry.RSXPitch) {
			s.backend.NotifySurfacePersist(existing)
			s.backend.PrepareDepthForDrawing(ctx, existing)
			existing.Descriptor().SetWriteAAMode(aa)
			existing.Descriptor().SetLastUseTag(s.nextTag())
			s.boundDepth = existing
			return existing, nil
		}
		// Depth path invalidates before preparing - reversed from color.
		s.backend.InvalidateSurfaceContents(ctx, existing)
		s.backend.PrepareDepthForDrawing(ctx, existing)
		delete(s.depthMap, address)
		s.pushInvalidated(existing, area, true)
	}

	// Step 3: invalidated-pool reuse scan.
	if reused, ok := s.scanInvalidatedForReuse(true, func(h SurfaceHandle) bool {
		return s.backend.DepthHasFormatWidthHeight(h, format, geometry) &&
			s.backend.SurfaceIsPitchCompatible(h, geometry.RSXPitch)
	}); ok {
		s.backend.PrepareDepthForDrawing(ctx, reused)
		reused.Descriptor().QueueTag(address)
		reused.Descriptor().SyncTag(s.mem)
		reused.Descriptor().SetWriteAAMode(aa)
		reused.Descriptor().SetLastUseTag(s.nextTag())
		s.depthMap[address] = reused
		s.boundDepth = reused
		s.depthRange = s.depthRange.Extend(area)
		return reused, nil
	}

	// Step 4: allocate new.
	created, err := s.backend.CreateNewDepthSurface(address, format, geometry, aa)
	if err != nil {
		return nil, &SurfaceStoreError{Operation: "BindAddressAsDepth", Details: "backend allocation failed", Err: err}
	}
	s.backend.PrepareDepthForDrawing(ctx, created)
	created.Descriptor().QueueTag(address)
	created.Descriptor().SyncTag(s.mem)
	created.Descriptor().SetLastUseTag(s.nextTag())
	s.depthMap[address] = created
	s.boundDepth = created
	s.depthRange = s.depthRange.Extend(area)
	return created, nil
}

// evictAlienOverlaps invalidates any surface of the opposite kind
// (color when binding depth, depth when binding color) whose range
// overlaps area: RSX never allows a color and depth surface to alias
// the same guest bytes.
func (s *SurfaceStore) evictAlienOverlaps(ctx CommandContext, address uint32, area AddressRange, bindingColor bool) {
	alienMap := s.depthMap
	if !bindingColor {
		alienMap = s.colorMap
	}
	for addr, h := range alienMap {
		g := h.Geometry()
		alienArea := NewAddressRangeStartLength(addr, uint32(g.Height)*uint32(g.RSXPitch))
		if !alienArea.Overlaps(area) {
			continue
		}
		if bindingColor {
			s.backend.InvalidateSurfaceContents(ctx, h)
		} else {
			s.backend.InvalidateSurfaceContents(ctx, h)
		}
		delete(alienMap, addr)
		s.pushInvalidated(h, alienArea, bindingColor)
	}
}

// PrepareRenderTarget implements prepare_render_target (spec §4.3): the
// single entry point a renderer calls every time surface format, clip,
// or addresses change. It advances the cache tag, clears the memory
// tree, returns every currently bound color surface to sampling state
// unconditionally - running save_aa_mode on each one so read_aa_mode
// takes over write_aa_mode's value before write_aa_mode resets - and
// rebinds whichever color slots layout's rtt_indexes names (skipping
// zero addresses). Only then does it return the bound depth surface to
// sampling the same way and, if depthAddress is nonzero, rebind the
// depth slot. Each rebind goes through BindAddressAsColor/
// BindAddressAsDepth so the full §4.2 protocol runs and write_aa_mode
// is restamped to aa.
func (s *SurfaceStore) PrepareRenderTarget(
	ctx CommandContext,
	colorFormat ColorFormat,
	depthFormat DepthFormat,
	clipWidth, clipHeight uint16,
	layout SurfaceTarget,
	aa AAMode,
	colorAddresses [MaxColorSurfaces]uint32,
	colorPitches [MaxColorSurfaces]uint16,
	depthAddress uint32,
	depthPitch uint16,
) {
	s.cacheTag = s.nextTag()
	s.memoryTree = nil

	// Step 2: every currently bound color slot goes back to sampling,
	// unconditionally - rtt_indexes is consulted only when rebinding.
	for i, h := range s.boundColor {
		if h != nil {
			h.Descriptor().SaveAAMode()
			s.backend.PrepareColorForSampling(ctx, h)
		}
		s.boundColor[i] = nil
	}

	colorBpp := s.formats.BytesPerPixel(colorFormat)
	for _, idx := range s.formats.GetRTTIndexes(layout) {
		address := colorAddresses[idx]
		if address == 0 {
			continue
		}
		geometry := SurfaceGeometry{
			Width: clipWidth, Height: clipHeight,
			NativePitch: colorPitches[idx], RSXPitch: colorPitches[idx],
			Bpp: colorBpp,
		}
		if _, err := s.BindAddressAsColor(ctx, int(idx), address, colorFormat, geometry, aa); err != nil {
			logf("prepare_render_target: bind color slot %d at %#x: %v", idx, address, err)
		}
	}

	if s.boundDepth != nil {
		s.boundDepth.Descriptor().SaveAAMode()
		s.backend.PrepareDepthForSampling(ctx, s.boundDepth)
		s.boundDepth = nil
	}
	if depthAddress == 0 {
		return
	}

	depthGeometry := SurfaceGeometry{
		Width: clipWidth, Height: clipHeight,
		NativePitch: depthPitch, RSXPitch: depthPitch,
		Bpp: s.formats.DepthBytesPerPixel(depthFormat),
	}
	if _, err := s.BindAddressAsDepth(ctx, depthAddress, depthFormat, depthGeometry, aa); err != nil {
		logf("prepare_render_target: bind depth at %#x: %v", depthAddress, err)
	}
}

// nextTag returns the next shared tag for a cache-tag bump or a
// last-use stamp. It leaves write_tag alone: only OnWrite sets it.
func (s *SurfaceStore) nextTag() uint64 {
	return nextSharedTag()
}
