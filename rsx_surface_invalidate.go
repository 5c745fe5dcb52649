// rsx_surface_invalidate.go - Invalidation (§4.6)

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
rsx_surface_invalidate.go - Invalidation (§4.6)

InvalidateSingleSurface drops one surface from the registry, notifying
the backend and pushing it onto the reuse pool, bumping cache_tag so
the next on_write rebuilds the memory tree without this surface.
InvalidateSurfaceAddress is the address-driven entry point a host
memory-protection fault handler (or an explicit guest command) calls:
per spec.md §7 a currently-bound address is a recoverable conflict -
logged at error level and left untouched - rather than invalidated out
from under its bind slot.
*/

package rsxsurface

import "fmt"

// InvalidateSingleSurface removes handle from whichever map currently
// holds it (color or depth, looked up by scanning both - the address
// is the map key, the handle carries no back-reference) and pushes it
// onto the invalidated-resources pool rather than destroying it
// outright, so a later bind at the same shape can reclaim it.
func (s *SurfaceStore) InvalidateSingleSurface(ctx CommandContext, handle SurfaceHandle) {
	if addr, ok := s.addressOf(handle, false); ok {
		delete(s.colorMap, addr)
		area := NewAddressRangeStartLength(addr, uint32(handle.Geometry().Height)*uint32(handle.Geometry().RSXPitch))
		s.backend.InvalidateSurfaceContents(ctx, handle)
		s.pushInvalidated(handle, area, false)
		s.cacheTag = s.nextTag()
		return
	}
	if addr, ok := s.addressOf(handle, true); ok {
		delete(s.depthMap, addr)
		area := NewAddressRangeStartLength(addr, uint32(handle.Geometry().Height)*uint32(handle.Geometry().RSXPitch))
		s.backend.InvalidateSurfaceContents(ctx, handle)
		s.pushInvalidated(handle, area, true)
		s.cacheTag = s.nextTag()
	}
}

// InvalidateSurfaceAddress invalidates whatever surface (color or
// depth) is registered at address. Per spec.md §4.6/§7, if that
// surface is currently bound the call refuses: it logs the conflict
// and returns a SurfaceStoreError without touching the registry or the
// bind slot. Otherwise it looks up, notifies, moves to the invalidated
// pool, and erases - InvalidateSingleSurface bumps cache_tag.
func (s *SurfaceStore) InvalidateSurfaceAddress(ctx CommandContext, address uint32) error {
	if h, ok := s.colorMap[address]; ok {
		for i, bound := range s.boundColor {
			if bound == h {
				err := &SurfaceStoreError{
					Operation: "InvalidateSurfaceAddress",
					Details:   fmt.Sprintf("color surface at %#x is bound in slot %d, refusing invalidation", address, i),
				}
				logf("%v", err)
				return err
			}
		}
		s.InvalidateSingleSurface(ctx, h)
		return nil
	}
	if h, ok := s.depthMap[address]; ok {
		if s.boundDepth == h {
			err := &SurfaceStoreError{
				Operation: "InvalidateSurfaceAddress",
				Details:   fmt.Sprintf("depth surface at %#x is bound, refusing invalidation", address),
			}
			logf("%v", err)
			return err
		}
		s.InvalidateSingleSurface(ctx, h)
		return nil
	}
	return nil
}
