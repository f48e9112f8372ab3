package resources

import "errors"

var (
	// ErrStaleHandle is returned when a handle refers to a removed or never-issued slot.
	ErrStaleHandle = errors.New("stale handle")

	// ErrResourceInUse is returned when removing a mesh or pipeline that instance lists still reference.
	ErrResourceInUse = errors.New("resource in use")

	// ErrEmptyMesh is returned when adding a mesh without indices.
	ErrEmptyMesh = errors.New("mesh has no indices")
)
