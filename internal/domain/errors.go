package domain

import "errors"

// Failure taxonomy for the inventory pipeline. Callers match these with
// errors.Is; wrapped causes carry the underlying detail.
var (
	// ErrDataUnavailable means the backing dataset is missing or unreadable.
	// Surfaced to the caller, never retried automatically.
	ErrDataUnavailable = errors.New("inventory dataset unavailable")

	// ErrAmbiguousTarget means an update command carried no usable selector.
	ErrAmbiguousTarget = errors.New("could not identify which product to update")

	// ErrTargetNotFound means the selector matched zero records.
	ErrTargetNotFound = errors.New("product not found in inventory")

	// ErrNoApplicableFields means a command resolved a target but none of the
	// extracted fields matched a known dataset column.
	ErrNoApplicableFields = errors.New("no applicable fields in update command")

	// ErrGenerationFailed means the generation capability timed out or
	// returned an error. The original question is unaffected; the caller
	// may retry.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrIndexInconsistent means the embedding count no longer matches the
	// chunk count. The coordinator reacts with a forced full re-index.
	ErrIndexInconsistent = errors.New("embedding index inconsistent with chunk set")
)
