// rsx_surface_tree.go - Memory-Tree Builder and write propagation (§4.5, §4.7)

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
rsx_surface_tree.go - Memory-Tree Builder (§4.5) and on_write (§4.7)

generateRenderTargetMemoryTree builds, for each currently bound
surface, the set of other registered surfaces (bound or not) whose
whole footprint fits inside that bound surface's memory range - the
"overlapping set" a render-target write must also dirty, since writing
the bound surface's pixels overwrites whatever smaller surfaces are
aliased inside its backing memory. OnWrite is the exact propagation
original_source/surface_store.h:1009-1067 implements: blocks are keyed
by the bound surface's own base address, and an address-filtered call
only touches the block whose key equals that address (not any address
that merely falls within its range).
*/

package rsxsurface

// memoryTreeBlock is one bound surface's footprint together with the
// set of other registered surfaces it fully contains.
type memoryTreeBlock struct {
	memoryAddress uint32   // the bound surface's own base address
	overlapping   []uint32 // addresses of surfaces fully inside its range
}

// generateRenderTargetMemoryTree rebuilds s.memoryTree from the
// currently bound color and depth surfaces (spec §4.5). For each bound
// surface B at address MA with footprint [MA, MA+rsx_pitch*height), it
// walks every entry in color_map and depth_map and records any entry
// at address A (A > MA, A < memory_end, and whose own footprint fits
// within B's remaining rows and columns) in B's overlapping set.
func (s *SurfaceStore) generateRenderTargetMemoryTree() {
	s.memoryTree = s.memoryTree[:0]

	processBlock := func(memoryAddress uint32, surf SurfaceHandle) {
		g := surf.Geometry()
		rsxPitch := uint32(g.RSXPitch)
		memoryEnd := memoryAddress + rsxPitch*uint32(g.Height)

		var overlapping []uint32
		considerEntry := func(addr uint32, other SurfaceHandle) {
			if addr <= memoryAddress { // also intentionally skips self
				return
			}
			if addr >= memoryEnd {
				return
			}
			og := other.Geometry()
			offset := addr - memoryAddress
			offsetY := offset / rsxPitch
			rowBytes2 := uint32(og.Bpp) * uint32(og.Width)

			fitsW := (offset%rsxPitch)+rowBytes2 <= rsxPitch
			fitsH := (offsetY+uint32(og.Height))*rsxPitch <= (memoryEnd - memoryAddress)
			if fitsW && fitsH {
				overlapping = append(overlapping, addr)
			}
		}
		for addr, h := range s.colorMap {
			considerEntry(addr, h)
		}
		for addr, h := range s.depthMap {
			considerEntry(addr, h)
		}

		if len(overlapping) > 0 {
			s.memoryTree = append(s.memoryTree, memoryTreeBlock{memoryAddress: memoryAddress, overlapping: overlapping})
		}
	}

	for _, h := range s.boundColor {
		if h == nil {
			continue
		}
		if addr, ok := s.addressOf(h, false); ok {
			processBlock(addr, h)
		}
	}
	if s.boundDepth != nil {
		if addr, ok := s.addressOf(s.boundDepth, true); ok {
			processBlock(addr, s.boundDepth)
		}
	}
}

// OnWrite implements surface_store::on_write (spec §4.7): address zero
// means "every bound surface just finished drawing"; a nonzero address
// only affects the bound surface whose own base address matches it
// exactly. Either way, every surface recorded in the matching memory-
// tree block's overlapping set is marked dirty before the bound
// surface(s) themselves are stamped with on_write(write_tag).
func (s *SurfaceStore) OnWrite(address uint32) {
	if address == 0 {
		if s.writeTag == s.cacheTag {
			return
		}
		s.writeTag = s.cacheTag
	}

	if s.memoryTag != s.cacheTag {
		s.generateRenderTargetMemoryTree()
		s.memoryTag = s.cacheTag
	}

	for _, block := range s.memoryTree {
		if address != 0 && block.memoryAddress != address {
			continue
		}
		for _, addr := range block.overlapping {
			if h, ok := s.colorMap[addr]; ok {
				h.Descriptor().dirty = true
			}
			if h, ok := s.depthMap[addr]; ok {
				h.Descriptor().dirty = true
			}
		}
	}

	tag := s.writeTag
	for _, h := range s.boundColor {
		if h == nil {
			continue
		}
		if address != 0 {
			if addr, ok := s.addressOf(h, false); !ok || addr != address {
				continue
			}
		}
		h.Descriptor().OnWrite(tag, s.mem)
	}
	if s.boundDepth != nil {
		if address == 0 {
			s.boundDepth.Descriptor().OnWrite(tag, s.mem)
		} else if addr, ok := s.addressOf(s.boundDepth, true); ok && addr == address {
			s.boundDepth.Descriptor().OnWrite(tag, s.mem)
		}
	}
}

// NotifyMemoryStructureChanged forces the next on_write to rebuild the
// memory tree by bumping cache_tag out of sync with memory_tag,
// mirroring notify_memory_structure_changed (spec §4.6).
func (s *SurfaceStore) NotifyMemoryStructureChanged() {
	s.cacheTag = s.nextTag()
}
