package resources

import (
	"github.com/Carmen-Shannon/echoes/engine/renderer/gpu"
	"github.com/Carmen-Shannon/echoes/engine/renderer/pipeline"
)

// Pipeline is a compiled render pipeline together with the descriptor it was compiled from.
// Pipelines are immutable once compiled.
type Pipeline struct {
	desc     pipeline.Pipeline
	compiled gpu.RenderPipeline
}

// Descriptor returns the description the pipeline was compiled from.
func (p *Pipeline) Descriptor() pipeline.Pipeline {
	return p.desc
}

// RenderPipeline returns the compiled pipeline.
func (p *Pipeline) RenderPipeline() gpu.RenderPipeline {
	return p.compiled
}

func (p *Pipeline) release() {
	p.compiled.Release()
}
