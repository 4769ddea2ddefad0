package entity

type SubmissionStatus string

const (
	SubmissionSuccess SubmissionStatus = "success"
	SubmissionFailed  SubmissionStatus = "failed"
)

// SubmissionResult is the settled outcome of one target dispatch.
type SubmissionResult struct {
	Target string           `json:"service"`
	Status SubmissionStatus `json:"status"`
	Detail string           `json:"error,omitempty"`
}

func (r SubmissionResult) Succeeded() bool {
	return r.Status == SubmissionSuccess
}
