package rsxsurface

// fakeSurfaceHandle and fakeBackend give the Bind/Overlap/Tree/Readback
// tests a SurfaceBackend with no GPU or windowing dependency, in the
// same spirit as the teacher's headless backends.

type fakeSurfaceHandle struct {
	descriptor *SurfaceDescriptor
	depth      bool
	colorFmt   ColorFormat
	depthFmt   DepthFormat
	pixels     []byte
}

func (h *fakeSurfaceHandle) Descriptor() *SurfaceDescriptor { return h.descriptor }
func (h *fakeSurfaceHandle) Geometry() SurfaceGeometry       { return h.descriptor.Geometry }
func (h *fakeSurfaceHandle) IsDepthSurface() bool            { return h.depth }
func (h *fakeSurfaceHandle) ReadBarrier(ctx CommandContext)  {}

type fakeDownload struct {
	data []byte
}

type fakeBackend struct {
	formats              FormatRegistry
	invalidatedCount     int
	persistedCount       int
	invalidateContentsN  int
}

func newFakeBackend(formats FormatRegistry) *fakeBackend {
	return &fakeBackend{formats: formats}
}

func (b *fakeBackend) CreateNewSurface(address uint32, format ColorFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	h := &fakeSurfaceHandle{descriptor: NewSurfaceDescriptor(geometry), colorFmt: format}
	h.descriptor.SetWriteAAMode(aa)
	bpp := b.formats.BytesPerPixel(format)
	alignedPitch := alignUp(uint32(geometry.Width)*uint32(bpp), StencilRowAlignment)
	h.pixels = make([]byte, alignedPitch*uint32(geometry.Height))
	return h, nil
}

func (b *fakeBackend) CreateNewDepthSurface(address uint32, format DepthFormat, geometry SurfaceGeometry, aa AAMode) (SurfaceHandle, error) {
	h := &fakeSurfaceHandle{descriptor: NewSurfaceDescriptor(geometry), depth: true, depthFmt: format}
	h.descriptor.SetWriteAAMode(aa)
	alignedPitch := alignUp(uint32(geometry.Width)*4, StencilRowAlignment)
	h.pixels = make([]byte, alignedPitch*uint32(geometry.Height))
	return h, nil
}

func (b *fakeBackend) ColorHasFormatWidthHeight(handle SurfaceHandle, format ColorFormat, geometry SurfaceGeometry) bool {
	h, ok := handle.(*fakeSurfaceHandle)
	if !ok || h.depth {
		return false
	}
	g := h.descriptor.Geometry
	return h.colorFmt == format && g.Width == geometry.Width && g.Height == geometry.Height
}

func (b *fakeBackend) DepthHasFormatWidthHeight(handle SurfaceHandle, format DepthFormat, geometry SurfaceGeometry) bool {
	h, ok := handle.(*fakeSurfaceHandle)
	if !ok || !h.depth {
		return false
	}
	g := h.descriptor.Geometry
	return h.depthFmt == format && g.Width == geometry.Width && g.Height == geometry.Height
}

func (b *fakeBackend) SurfaceIsPitchCompatible(handle SurfaceHandle, pitch uint16) bool {
	h, ok := handle.(*fakeSurfaceHandle)
	if !ok {
		return false
	}
	return h.descriptor.Geometry.RSXPitch >= pitch
}

func (b *fakeBackend) PrepareColorForDrawing(ctx CommandContext, handle SurfaceHandle)  {}
func (b *fakeBackend) PrepareColorForSampling(ctx CommandContext, handle SurfaceHandle) {}
func (b *fakeBackend) PrepareDepthForDrawing(ctx CommandContext, handle SurfaceHandle)  {}
func (b *fakeBackend) PrepareDepthForSampling(ctx CommandContext, handle SurfaceHandle) {}

func (b *fakeBackend) NotifySurfaceInvalidated(handle SurfaceHandle) { b.invalidatedCount++ }
func (b *fakeBackend) NotifySurfacePersist(handle SurfaceHandle)     { b.persistedCount++ }

func (b *fakeBackend) InvalidateSurfaceContents(ctx CommandContext, handle SurfaceHandle) {
	b.invalidateContentsN++
}

func (b *fakeBackend) GetSurfaceInfo(handle SurfaceHandle) any { return nil }

func (b *fakeBackend) IssueColorDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h := handle.(*fakeSurfaceHandle)
	return &fakeDownload{data: h.pixels}, nil
}

func (b *fakeBackend) IssueDepthDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h := handle.(*fakeSurfaceHandle)
	return &fakeDownload{data: h.pixels}, nil
}

func (b *fakeBackend) IssueStencilDownloadCommand(ctx CommandContext, handle SurfaceHandle) (DownloadObject, error) {
	h := handle.(*fakeSurfaceHandle)
	return &fakeDownload{data: h.pixels}, nil
}

func (b *fakeBackend) MapDownloadedBuffer(obj DownloadObject) ([]byte, error) {
	return obj.(*fakeDownload).data, nil
}

func (b *fakeBackend) UnmapDownloadedBuffer(obj DownloadObject) {}

func (b *fakeBackend) Destroy() {}
