package compliance

import "errors"

// FailureKind classifies a terminal check failure.
type FailureKind string

const (
	// KindConnection marks failures bootstrapping the work tracking client.
	KindConnection FailureKind = "connection"
	// KindAuthorization marks credential failures against the data provider.
	KindAuthorization FailureKind = "authorization"
	// KindResolution marks an unresolvable internal repository id.
	KindResolution FailureKind = "resolution"
	// KindLinkCreation marks relation-add failures other than duplicates.
	KindLinkCreation FailureKind = "link-creation"
	// KindNotFound marks a missing work item.
	KindNotFound FailureKind = "not-found"
	// KindValidation marks unexpected work item fetch failures.
	KindValidation FailureKind = "validation"
	// KindMissingReference marks a commit or pull request without a token.
	KindMissingReference FailureKind = "missing-reference"
	// KindUnknown is the top-level catch-all.
	KindUnknown FailureKind = "unknown"
)

// Failure is a classified error. Raw collaborator errors never cross a
// component boundary; they are wrapped into a Failure with a Kind.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure wraps err into a classified Failure.
func NewFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, or KindUnknown when err carries none.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}
