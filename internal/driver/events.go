package driver

import "time"

// Stage describes a pipeline phase for a single file.
type Stage string

const (
	// StageConfig is the configuration resolution stage.
	StageConfig Stage = "config"
	// StageSort is the import sorting stage.
	StageSort Stage = "sort"
	// StageStyle is the style formatting stage.
	StageStyle Stage = "style"
	// StageWrite is the write-back stage.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file encountered an error.
	StatusError Status = "error"
)

// Event reports progress for one file. The terminal done or error
// event carries the file's total Elapsed time.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
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

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
