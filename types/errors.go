package types

import "fmt"

// Validation failure reasons.
const (
	ReasonSceneCountOutOfRange    = "scene_count_out_of_range"
	ReasonSceneIndexNotContiguous = "scene_index_not_contiguous"
	ReasonMissingNarration        = "missing_narration"
	ReasonZeroDeclaredDuration    = "zero_declared_duration"
	ReasonBadAudioDuration        = "nonpositive_audio_duration"
	ReasonBadResponseShape        = "bad_response_shape"
)

// ValidationError reports a malformed artifact: bad scene count,
// missing narration, zero declared duration, or a service response
// whose decoded content fails domain validation.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Reason, e.Detail)
}

// ServiceError reports an external collaborator that was unreachable,
// timed out, or returned something of an unexpected shape.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IOError reports an expected artifact missing or unwritable at a
// stage boundary.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConsistencyError marks timing invariants that could not be satisfied
// even after the documented fallback. It is surfaced as a run warning,
// never as a stage failure.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return "timing consistency: " + e.Detail
}
