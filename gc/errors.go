package gc

import "errors"

// ErrOutOfMemory is returned when the system allocator cannot satisfy
// an allocation request even after a forced collection cycle. The
// caller's previous state is unchanged.
var ErrOutOfMemory = errors.New("gc: out of memory")

// ErrInvalidArgument is returned by Realloc when given a non-nil
// pointer the collector does not track.
var ErrInvalidArgument = errors.New("gc: invalid argument")
