package syncer

import "errors"

var (
	// ErrSyncInProgress is returned when another operation holds the service.
	ErrSyncInProgress = errors.New("another sync is already running")

	// ErrCollaboratorMissing is returned when an operation needs the
	// metadata index and none is configured.
	ErrCollaboratorMissing = errors.New("the metadata index is required for this operation")
)

// ConfigError reports settings that make an operation impossible. It is
// raised before any network or vault I/O.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}
