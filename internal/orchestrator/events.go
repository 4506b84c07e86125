package orchestrator

import "github.com/sells-group/hardware-cli/internal/model"

// Progress reported at each stage.
const (
	progressNormalize = 10
	progressClassify  = 20
	progressWebSearch = 30
	progressResolve   = 35
	progressSelection = 40
	progressSource    = 50
	progressScrape    = 60
	progressReady     = 90
	progressDone      = 100
)

// Sink observes events as they are emitted.
type Sink func(model.Event)

// emitter records one command's events and keeps progress non-decreasing.
type emitter struct {
	events   []model.Event
	progress int
	sink     Sink
}

func (e *emitter) emit(ev model.Event) {
	if ev.Progress < e.progress {
		ev.Progress = e.progress
	}
	e.progress = ev.Progress
	e.events = append(e.events, ev)
	if e.sink != nil {
		e.sink(ev)
	}
}

func (e *emitter) sourceTrying(name, url string) {
	e.emit(model.Event{Kind: model.EventSourceTrying, Progress: progressSource, Message: "trying " + name, Source: name, URL: url})
}

func (e *emitter) sourceSuccess(progress int, name, url string, n int) {
	e.emit(model.Event{Kind: model.EventSourceSuccess, Progress: progress, Message: name + " returned specs", Source: name, URL: url, Count: n})
}

func (e *emitter) sourceFailed(progress int, name, url string, err error) {
	e.emit(model.Event{Kind: model.EventSourceFailed, Progress: progress, Message: err.Error(), Source: name, URL: url})
}

func (e *emitter) sourceAntiBot(progress int, name, url string) {
	e.emit(model.Event{Kind: model.EventSourceAntiBot, Progress: progress, Message: "anti-bot protection detected", Source: name, URL: url})
}
