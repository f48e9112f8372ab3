package ui

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad(x, y, size float32, tex TextureID) ClippedPrimitive {
	return ClippedPrimitive{
		ClipRect: ClipRect{MinX: x, MinY: y, MaxX: x + size, MaxY: y + size},
		Vertices: []Vertex{
			{Pos: [2]float32{x, y}},
			{Pos: [2]float32{x + size, y}},
			{Pos: [2]float32{x + size, y + size}},
			{Pos: [2]float32{x, y + size}},
		},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
		TextureID: tex,
	}
}

func triangle(clip ClipRect) ClippedPrimitive {
	return ClippedPrimitive{
		ClipRect: clip,
		Vertices: []Vertex{{}, {Pos: [2]float32{1, 0}}, {Pos: [2]float32{0, 1}}},
		Indices:  []uint32{0, 1, 2},
	}
}

func findBuffer(t *testing.T, device *gputest.Device, label string) *gputest.Buffer {
	t.Helper()
	for _, b := range device.Buffers {
		if b.Label() == label && !b.Released {
			return b
		}
	}
	t.Fatalf("no live buffer %q", label)
	return nil
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, uint64(20), VertexSize)
	layout := VertexLayout()
	assert.Equal(t, VertexSize, layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, uint64(16), layout.Attributes[2].Offset)
}

func TestSubmitTwiceWithoutPaint(t *testing.T) {
	p, err := NewPainter(gputest.NewDevice(), 800, 600)
	require.NoError(t, err)

	require.NoError(t, p.Submit(FrameData{}))
	assert.True(t, p.Pending())
	assert.ErrorIs(t, p.Submit(FrameData{}), ErrFramePending)

	p.Paint((&gputest.Frame{}).Pass())
	assert.False(t, p.Pending())
	assert.NoError(t, p.Submit(FrameData{}))
}

func TestPaintDrawsPrimitivesInOrder(t *testing.T) {
	device := gputest.NewDevice()
	p, err := NewPainter(device, 800, 600)
	require.NoError(t, err)

	atlas := common.TextureStagingData{Pixels: make([]byte, 2*2*4), Width: 2, Height: 2}
	require.NoError(t, p.Submit(FrameData{
		Primitives: []ClippedPrimitive{
			triangle(ClipRect{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}),
			quad(10, 10, 20, 7),
		},
		Textures:       TexturesDelta{Set: map[TextureID]common.TextureStagingData{7: atlas}},
		PixelsPerPoint: 2,
	}))
	require.NoError(t, p.Update())

	screen := findBuffer(t, device, "ui screen")
	assert.Equal(t, float32(400), math.Float32frombits(binary.LittleEndian.Uint32(screen.Data[0:4])))
	assert.Equal(t, float32(300), math.Float32frombits(binary.LittleEndian.Uint32(screen.Data[4:8])))

	frame := &gputest.Frame{}
	p.Paint(frame.Pass())

	draws := frame.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, uint32(3), draws[0].Count)
	assert.Equal(t, uint32(0), draws[0].First)
	assert.Equal(t, uint32(0), draws[0].Slot)
	assert.Equal(t, uint32(6), draws[1].Count)
	assert.Equal(t, uint32(3), draws[1].First)
	assert.Equal(t, uint32(3), draws[1].Slot)

	var scissors [][4]uint32
	var textures []string
	for _, c := range frame.Commands {
		switch {
		case c.Name == "SetScissorRect":
			scissors = append(scissors, c.Scissor)
		case c.Name == "SetBindGroup" && c.Slot == 1:
			textures = append(textures, c.BindGroup.Label())
		}
	}
	assert.Equal(t, [][4]uint32{{0, 0, 200, 100}, {20, 20, 40, 40}, {0, 0, 800, 600}}, scissors)
	assert.Equal(t, []string{"ui white", "ui texture 7"}, textures)
	assert.Equal(t, "SetPipeline", frame.Commands[0].Name)
	assert.Equal(t, PipelineKey, frame.Commands[0].Pipeline.Label())
	assert.False(t, p.Pending())
}

func TestPrimitiveOutsideScreenIsSkipped(t *testing.T) {
	p, err := NewPainter(gputest.NewDevice(), 100, 100)
	require.NoError(t, err)

	require.NoError(t, p.Submit(FrameData{Primitives: []ClippedPrimitive{
		triangle(ClipRect{MinX: 200, MinY: 200, MaxX: 300, MaxY: 300}),
		triangle(ClipRect{MinX: 50, MinY: 50, MaxX: 50, MaxY: 80}),
		triangle(ClipRect{MinX: -10, MinY: -10, MaxX: 500, MaxY: 20}),
	}}))
	require.NoError(t, p.Update())

	frame := &gputest.Frame{}
	p.Paint(frame.Pass())
	require.Len(t, frame.Draws(), 1)
	assert.Equal(t, uint32(0), frame.Draws()[0].Slot)
	assert.Equal(t, [4]uint32{0, 0, 100, 20}, frame.Commands[4].Scissor)
}

func TestEmptyFrameDrawsNothing(t *testing.T) {
	p, err := NewPainter(gputest.NewDevice(), 100, 100)
	require.NoError(t, err)

	require.NoError(t, p.Submit(FrameData{}))
	require.NoError(t, p.Update())
	frame := &gputest.Frame{}
	p.Paint(frame.Pass())
	assert.Empty(t, frame.Commands)
}

func TestTexturesFreedAfterPaint(t *testing.T) {
	device := gputest.NewDevice()
	p, err := NewPainter(device, 100, 100)
	require.NoError(t, err)

	atlas := common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}
	require.NoError(t, p.Submit(FrameData{Textures: TexturesDelta{Set: map[TextureID]common.TextureStagingData{3: atlas}}}))
	require.NoError(t, p.Update())
	p.Paint((&gputest.Frame{}).Pass())

	group := device.BindGroups[len(device.BindGroups)-1]
	assert.Equal(t, "ui texture 3", group.Label())

	prim := quad(0, 0, 10, 3)
	require.NoError(t, p.Submit(FrameData{Primitives: []ClippedPrimitive{prim}, Textures: TexturesDelta{Free: []TextureID{3}}}))
	require.NoError(t, p.Update())
	assert.False(t, group.Released)

	frame := &gputest.Frame{}
	p.Paint(frame.Pass())
	require.Len(t, frame.Draws(), 1)
	assert.True(t, group.Released)
}

func TestInvalidTextureFailsUpdate(t *testing.T) {
	p, err := NewPainter(gputest.NewDevice(), 100, 100)
	require.NoError(t, err)

	bad := common.TextureStagingData{Pixels: make([]byte, 3), Width: 1, Height: 1}
	require.NoError(t, p.Submit(FrameData{Textures: TexturesDelta{Set: map[TextureID]common.TextureStagingData{1: bad}}}))
	assert.Error(t, p.Update())
}

func TestResizeIgnoresZero(t *testing.T) {
	device := gputest.NewDevice()
	p, err := NewPainter(device, 100, 100)
	require.NoError(t, err)

	p.Resize(0, 50)
	p.Resize(300, 200)
	require.NoError(t, p.Submit(FrameData{}))
	require.NoError(t, p.Update())

	screen := findBuffer(t, device, "ui screen")
	assert.Equal(t, float32(300), math.Float32frombits(binary.LittleEndian.Uint32(screen.Data[0:4])))
	assert.Equal(t, float32(200), math.Float32frombits(binary.LittleEndian.Uint32(screen.Data[4:8])))
}

func TestReleaseFreesBuffers(t *testing.T) {
	device := gputest.NewDevice()
	p, err := NewPainter(device, 100, 100)
	require.NoError(t, err)

	p.Release()
	assert.Empty(t, device.LiveBuffers())
}

func TestDiscardClearsPendingFrame(t *testing.T) {
	p, err := NewPainter(gputest.NewDevice(), 100, 100)
	require.NoError(t, err)

	require.NoError(t, p.Submit(FrameData{Primitives: []ClippedPrimitive{quad(0, 0, 10, 0)}}))
	require.NoError(t, p.Update())
	p.Discard()
	assert.False(t, p.Pending())

	frame := &gputest.Frame{}
	p.Paint(frame.Pass())
	assert.Empty(t, frame.Commands)
}
