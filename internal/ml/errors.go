package ml

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a caller names a strategy domain the
// registry does not manage.
var ErrUnknownModel = errors.New("unknown model")

// SchemaError reports a payload that is missing a feature the trained model
// expects. Training data is never silently defaulted; the offending key is
// surfaced to the caller.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required feature %q", e.Field)
}

// ConfigError reports invalid blend configuration, such as negative weights
// or weights that cannot be normalized to sum to 1.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid blend configuration: %s", e.Reason)
}

// NotReadyError reports a prediction against a domain whose model has not
// been trained or loaded.
type NotReadyError struct {
	Model string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("model %s is not trained", e.Model)
}

// TrainingError wraps a fit failure for one domain. A previous artifact, if
// any, remains servable.
type TrainingError struct {
	Model string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training %s failed: %v", e.Model, e.Err)
}

func (e *TrainingError) Unwrap() error { return e.Err }
