package common

// RemoteRejection is a server-side error envelope: the server answered, but
// with error=true. The message is kept verbatim for display. Matches
// ErrRejected under errors.Is.
type RemoteRejection struct {
	Message string
}

func (e *RemoteRejection) Error() string { return e.Message }

func (e *RemoteRejection) Is(target error) bool { return target == ErrRejected }
