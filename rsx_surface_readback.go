// rsx_surface_readback.go - Readback Pack (§4.8)

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
rsx_surface_readback.go - Readback Pack (§4.8)

get_render_targets_data/get_depth_stencil_data: issue a download
through the backend, map the result, and repack it from the backend's
(possibly padded) row pitch into a tightly packed guest-format buffer.
The depth/stencil row is aligned to 256 bytes regardless of element
size - original_source/surface_store.h applies this even to the 2-byte
Z16 format, so the repacker follows suit rather than "fixing" it.
*/

package rsxsurface

import (
	"encoding/binary"
	"fmt"
)

// ReadColorTargets downloads every currently bound color surface and
// returns its pixels repacked to GetPackedPitch(format, width) - no
// host-side row padding survives into the guest-format output.
func (s *SurfaceStore) ReadColorTargets(ctx CommandContext) ([][]byte, error) {
	out := make([][]byte, MaxColorSurfaces)
	for i, h := range s.boundColor {
		if h == nil {
			continue
		}
		data, err := s.readOneColor(ctx, h)
		if err != nil {
			return nil, &SurfaceStoreError{Operation: "ReadColorTargets", Details: fmt.Sprintf("slot %d", i), Err: err}
		}
		out[i] = data
	}
	return out, nil
}

func (s *SurfaceStore) readOneColor(ctx CommandContext, h SurfaceHandle) ([]byte, error) {
	obj, err := s.backend.IssueColorDownloadCommand(ctx, h)
	if err != nil {
		return nil, err
	}
	defer s.backend.UnmapDownloadedBuffer(obj)

	raw, err := s.backend.MapDownloadedBuffer(obj)
	if err != nil {
		return nil, err
	}

	g := h.Geometry()
	bpp := uint32(g.Bpp)
	alignedPitch := alignUp(uint32(g.Width)*bpp, StencilRowAlignment)
	packedPitch := uint32(g.Width) * bpp
	out := repackRows(raw, uint32(g.Height), alignedPitch, packedPitch)
	// 16- and 32-bit formats are stored big-endian in guest memory; the
	// 64- and 128-bit formats are copied without a swap.
	switch bpp {
	case 2:
		for i := 0; i+2 <= len(out); i += 2 {
			binary.BigEndian.PutUint16(out[i:], binary.LittleEndian.Uint16(out[i:]))
		}
	case 4:
		for i := 0; i+4 <= len(out); i += 4 {
			binary.BigEndian.PutUint32(out[i:], binary.LittleEndian.Uint32(out[i:]))
		}
	}
	return out, nil
}

// ReadDepthStencilTarget downloads the bound depth surface's depth
// channel and, if the format carries one, its stencil channel. Both
// rows are aligned to 256 bytes on the backend side regardless of
// element width, per original_source/surface_store.h; both are
// repacked tightly on the way out.
func (s *SurfaceStore) ReadDepthStencilTarget(ctx CommandContext, depthFormat DepthFormat) (depthBytes []byte, stencilBytes []byte, err error) {
	if s.boundDepth == nil {
		return nil, nil, &SurfaceStoreError{Operation: "ReadDepthStencilTarget", Details: "no depth surface bound"}
	}
	g := s.boundDepth.Geometry()

	depthObj, err := s.backend.IssueDepthDownloadCommand(ctx, s.boundDepth)
	if err != nil {
		return nil, nil, &SurfaceStoreError{Operation: "ReadDepthStencilTarget", Details: "depth download failed", Err: err}
	}
	defer s.backend.UnmapDownloadedBuffer(depthObj)
	rawDepth, err := s.backend.MapDownloadedBuffer(depthObj)
	if err != nil {
		return nil, nil, &SurfaceStoreError{Operation: "ReadDepthStencilTarget", Details: "depth map failed", Err: err}
	}

	depthElemSize := uint32(2)
	if depthFormat == DepthZ24S8 {
		depthElemSize = 4
	}
	alignedDepthPitch := alignUp(uint32(g.Width)*4, StencilRowAlignment)
	packedDepthPitch := uint32(g.Width) * depthElemSize
	depthBytes = repackRows(rawDepth, uint32(g.Height), alignedDepthPitch, packedDepthPitch)

	if !s.formats.IsDepthStencil(depthFormat) {
		return depthBytes, nil, nil
	}

	stencilObj, err := s.backend.IssueStencilDownloadCommand(ctx, s.boundDepth)
	if err != nil {
		return depthBytes, nil, &SurfaceStoreError{Operation: "ReadDepthStencilTarget", Details: "stencil download failed", Err: err}
	}
	defer s.backend.UnmapDownloadedBuffer(stencilObj)
	rawStencil, err := s.backend.MapDownloadedBuffer(stencilObj)
	if err != nil {
		return depthBytes, nil, &SurfaceStoreError{Operation: "ReadDepthStencilTarget", Details: "stencil map failed", Err: err}
	}
	alignedStencilPitch := alignUp(uint32(g.Width), StencilRowAlignment)
	packedStencilPitch := uint32(g.Width)
	stencilBytes = repackRows(rawStencil, uint32(g.Height), alignedStencilPitch, packedStencilPitch)

	return depthBytes, stencilBytes, nil
}

// repackRows copies height rows of packedPitch bytes each out of a
// buffer whose rows are actually spaced alignedPitch bytes apart,
// producing a tightly packed buffer with no inter-row gaps - the Go
// equivalent of copy_pitched_src_to_dst.
func repackRows(src []byte, height, alignedPitch, packedPitch uint32) []byte {
	if alignedPitch == 0 || packedPitch == 0 {
		return nil
	}
	dst := make([]byte, height*packedPitch)
	for row := uint32(0); row < height; row++ {
		srcOff := row * alignedPitch
		dstOff := row * packedPitch
		if srcOff+packedPitch > uint32(len(src)) {
			break
		}
		copy(dst[dstOff:dstOff+packedPitch], src[srcOff:srcOff+packedPitch])
	}
	return dst
}
