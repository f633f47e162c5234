package batch

import "time"

// Status captures the progress state of one job.
type Status string

const (
	// StatusQueued indicates the job is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusRunning indicates the job is being evaluated.
	StatusRunning Status = "running"
	// StatusDone indicates the job finished successfully.
	StatusDone Status = "done"
	// StatusFailed indicates the evaluation returned an error.
	StatusFailed Status = "failed"
)

// Event reports progress for a job.
type Event struct {
	Job     string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
