// rsx_surface_backend_ebiten.go - Software/Ebiten surface backend

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
rsx_surface_backend_ebiten.go - Ebiten-backed SurfaceBackend

Grounded on the teacher's VoodooSoftwareBackend (voodoo_software.go):
a dependency-light, CPU-resident backend usable with no GPU driver at
all, now with *ebiten.Image as the concrete host resource instead of a
hand-rolled framebuffer, since ebiten.Image already gives ReadPixels
for the Readback Pack. InvalidateSurfaceContents only clears the image;
no old contents are blitted into it.
*/

package rsxsurface

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenSurfaceHandle wraps an *ebiten.Image as a SurfaceHandle.
type ebitenSurfaceHandle struct {
	descriptor *SurfaceDescriptor
	img        *ebiten.Image
	depth      bool
	colorFmt   ColorFormat
	depthFmt   DepthFormat
}

func (h *ebitenSurfaceHandle) Descriptor() *SurfaceDescriptor { return h.descriptor }
func (h *ebitenSurfaceHandle) Geometry() SurfaceGeometry       { return h.descriptor.Geometry }
func (h *ebitenSurfaceHandle) IsDepthSurface() bool            { return h.depth }

// ReadBarrier is a no-op here: ebiten serializes draws against reads
// within a single Go process, there is no explicit fence to insert.
func (h *ebitenSurfaceHandle) ReadBarrier(ctx CommandContext) {}

// EbitenSurfaceBackend implements SurfaceBackend entirely on top of
// *ebiten.Image, with no native graphics driver dependency.
type EbitenSurfaceBackend struct {
	mu      sync.Mutex
	formats FormatRegistry
}

// NewEbitenSurfaceBackend constructs the software-path backend.
func NewEbitenSurfaceBackend(formats FormatRegistry) *EbitenSurfaceBackend {
	return &EbitenSurfaceBackend{formats: formats}
}

func (b *EbitenSurfaceBackend) CreateNewSurface(address uint32, format ColorFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if geometry.Width == 0 || geometry.Height == 0 {
		return nil, &SurfaceStoreError{Operation: "CreateNewSurface", Details: fmt.Sprintf("invalid geometry %+v", geometry)}
	}
	img := ebiten.NewImage(int(geometry.Width), int(geometry.Height))
	h := &ebitenSurfaceHandle{
		descriptor: NewSurfaceDescriptor(geometry),
		img:        img,
		colorFmt:   format,
	}
	h.descriptor.SetWriteAAMode(aa)
	return h, nil
}

func (b *EbitenSurfaceBackend) CreateNewDepthSurface(address uint32, format DepthFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if geometry.Width == 0 || geometry.Height == 0 {
		return nil, &SurfaceStoreError{Operation: "CreateNewDepthSurface", Details: fmt.Sprintf("invalid geometry %+v", geometry)}
	}
	img := ebiten.NewImage(int(geometry.Width), int(geometry.Height))
	h := &ebitenSurfaceHandle{
		descriptor: NewSurfaceDescriptor(geometry),
		img:        img,
		depth:      true,
		depthFmt:   format,
	}
	h.descriptor.SetWriteAAMode(aa)
	return h, nil
}

func (b *EbitenSurfaceBackend) ColorHasFormatWidthHeight(handle SurfaceHandle, format ColorFormat, geometry SurfaceGeometry) bool {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok || h.depth {
		return false
	}
	g := h.descriptor.Geometry
	return h.colorFmt == format && g.Width == geometry.Width && g.Height == geometry.Height
}

func (b *EbitenSurfaceBackend) DepthHasFormatWidthHeight(handle SurfaceHandle, format DepthFormat, geometry SurfaceGeometry) bool {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok || !h.depth {
		return false
	}
	g := h.descriptor.Geometry
	return h.depthFmt == format && g.Width == geometry.Width && g.Height == geometry.Height
}

func (b *EbitenSurfaceBackend) SurfaceIsPitchCompatible(handle SurfaceHandle, pitch uint16) bool {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok {
		return false
	}
	return h.descriptor.Geometry.RSXPitch >= pitch
}

func (b *EbitenSurfaceBackend) PrepareColorForDrawing(ctx CommandContext, handle SurfaceHandle) {}
func (b *EbitenSurfaceBackend) PrepareColorForSampling(ctx CommandContext, handle SurfaceHandle) {}
func (b *EbitenSurfaceBackend) PrepareDepthForDrawing(ctx CommandContext, handle SurfaceHandle)  {}
func (b *EbitenSurfaceBackend) PrepareDepthForSampling(ctx CommandContext, handle SurfaceHandle) {}

func (b *EbitenSurfaceBackend) NotifySurfaceInvalidated(handle SurfaceHandle) {}
func (b *EbitenSurfaceBackend) NotifySurfacePersist(handle SurfaceHandle)     {}

func (b *EbitenSurfaceBackend) InvalidateSurfaceContents(ctx CommandContext, handle SurfaceHandle) {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok {
		return
	}
	h.img.Clear()
}

func (b *EbitenSurfaceBackend) GetSurfaceInfo(handle SurfaceHandle) any {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok {
		return nil
	}
	return h.img.Bounds()
}

// ebitenDownload is the DownloadObject this backend hands back: the
// pixels are read eagerly since ebiten.Image.ReadPixels is synchronous,
// there is no separate map step to defer work to.
type ebitenDownload struct {
	pixels []byte // tightly packed RGBA, one byte per channel
	width  int
	height int
}

func (b *EbitenSurfaceBackend) IssueColorDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok || h.depth {
		return nil, &SurfaceStoreError{Operation: "IssueColorDownloadCommand", Details: "not a color surface"}
	}
	bounds := h.img.Bounds()
	pixels := make([]byte, 4*bounds.Dx()*bounds.Dy())
	h.img.ReadPixels(pixels)
	return &ebitenDownload{pixels: pixels, width: bounds.Dx(), height: bounds.Dy()}, nil
}

func (b *EbitenSurfaceBackend) IssueDepthDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok || !h.depth {
		return nil, &SurfaceStoreError{Operation: "IssueDepthDownloadCommand", Details: "not a depth surface"}
	}
	bounds := h.img.Bounds()
	pixels := make([]byte, 4*bounds.Dx()*bounds.Dy())
	h.img.ReadPixels(pixels)
	return &ebitenDownload{pixels: pixels, width: bounds.Dx(), height: bounds.Dy()}, nil
}

func (b *EbitenSurfaceBackend) IssueStencilDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h, ok := handle.(*ebitenSurfaceHandle)
	if !ok || !h.depth || h.depthFmt != DepthZ24S8 {
		return nil, &SurfaceStoreError{Operation: "IssueStencilDownloadCommand", Details: "surface has no stencil channel"}
	}
	bounds := h.img.Bounds()
	pixels := make([]byte, 4*bounds.Dx()*bounds.Dy())
	h.img.ReadPixels(pixels)
	return &ebitenDownload{pixels: pixels, width: bounds.Dx(), height: bounds.Dy()}, nil
}

func (b *EbitenSurfaceBackend) MapDownloadedBuffer(obj DownloadObject) ([]byte, error) {
	d, ok := obj.(*ebitenDownload)
	if !ok {
		return nil, &SurfaceStoreError{Operation: "MapDownloadedBuffer", Details: "not an ebiten download"}
	}
	return d.pixels, nil
}

func (b *EbitenSurfaceBackend) UnmapDownloadedBuffer(obj DownloadObject) {}

func (b *EbitenSurfaceBackend) Destroy() {}
