package driver

import "time"

// Event reports a declaration changing status. Working events precede the
// kernel call; the final event carries the outcome.
type Event struct {
	Index   int
	Decl    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to Ch. The caller closes Ch after the run.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) { f(ev) }

func (r *run) notify(i int, st Status, err error, elapsed time.Duration) {
	if r.progress == nil {
		return
	}
	r.progress.OnEvent(Event{Index: i, Decl: r.decls[i].Name, Status: st, Err: err, Elapsed: elapsed})
}
