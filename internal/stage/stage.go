// Package stage reconstructs an upload job's pipeline stage from the job's
// generic metadata bag.
//
// The ingestion worker asserts every transition; this package only validates
// and rebuilds what it finds. Nothing in the bag is trusted: each field is
// decoded on its own and an invalid field is dropped without affecting the
// others.
package stage

import (
	"fmt"

	"go-weave/internal/domain"

	"github.com/pkg/errors"
)

type Stage string

const (
	Registered Stage = "registered"
	Uploaded   Stage = "uploaded"
	Processing Stage = "processing"
	Extracted  Stage = "extracted"
	Indexed    Stage = "indexed"
	Injected   Stage = "injected"

	// Failed is absorbing and sits outside the ordered pipeline.
	Failed Stage = "failed"
)

// Pipeline lists the non-failure stages in the order a job moves through them.
var Pipeline = []Stage{Registered, Uploaded, Processing, Extracted, Indexed, Injected}

var ErrUnknownStage = errors.New("unknown stage")

func Parse(s string) (Stage, error) {
	st := Stage(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return st, nil
}

func (s Stage) Valid() bool {
	return s == Failed || s.Index() >= 0
}

// Index is the position of s in Pipeline, or -1 for failed and unknown values.
func (s Stage) Index() int {
	for i, p := range Pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// StatusFor maps a stage onto the coarse job status shown in listings.
func StatusFor(s Stage) domain.JobStatus {
	switch s {
	case Registered:
		return domain.JobUploading
	case Uploaded:
		return domain.JobQueued
	case Processing, Extracted, Indexed:
		return domain.JobProcessing
	case Injected:
		return domain.JobCompleted
	default:
		return domain.JobFailed
	}
}
