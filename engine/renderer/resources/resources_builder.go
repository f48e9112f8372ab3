package resources

// ResourcesBuilderOption is a function that configures the registry during construction.
type ResourcesBuilderOption func(*resourcesImpl)

// WithPackWorkers sets how many workers pack instance lists in parallel during
// PrepareInstanceBuffers. One or fewer packs serially on the calling goroutine.
//
// Parameters:
//   - workers: the number of pack workers
//
// Returns:
//   - ResourcesBuilderOption: a function that sets the worker count
func WithPackWorkers(workers int) ResourcesBuilderOption {
	return func(r *resourcesImpl) {
		r.packWorkers = workers
	}
}

// WithInitialInstanceCapacity sets the initial instance buffer capacity of new instance lists.
//
// Parameters:
//   - bytes: the capacity in bytes
//
// Returns:
//   - ResourcesBuilderOption: a function that sets the capacity
func WithInitialInstanceCapacity(bytes uint64) ResourcesBuilderOption {
	return func(r *resourcesImpl) {
		r.instanceCapacity = bytes
	}
}

// WithLabel sets the prefix of every GPU object label the registry creates.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - ResourcesBuilderOption: a function that sets the label
func WithLabel(label string) ResourcesBuilderOption {
	return func(r *resourcesImpl) {
		r.label = label
	}
}
