package segmentation

import (
	"fmt"

	"ctfiducials/internal/models"
)

// ConfigurationError reports a required parameter that was never supplied or
// holds an unusable value.
type ConfigurationError struct {
	Parameter string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration: %s was not supplied", e.Parameter)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Parameter, e.Reason)
}

// DegenerateInputError reports a stage that produced no region when the caller
// asked for at least one.
type DegenerateInputError struct {
	Stage string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: %s produced no region", e.Stage)
}

// RequireCandidates returns a DegenerateInputError when l holds no label.
// The detectors never call it themselves; an empty result is valid.
func RequireCandidates(stage string, l *models.LabelMap) error {
	if l == nil || len(l.Labels()) == 0 {
		return &DegenerateInputError{Stage: stage}
	}
	return nil
}
