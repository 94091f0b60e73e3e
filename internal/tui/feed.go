package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
	"github.com/AntohaY/quicklists/internal/viewmodel"
)

type overview = stream.Pair[[]model.Checklist, []model.ChecklistItem]

// refreshMsg tells the program that the feed holds newer values.
type refreshMsg struct{}

// paintMsg runs the callbacks deferred until after the last render.
type paintMsg struct{}

// feed is the hand-off between stream subscriptions and the bubbletea model. Stream
// callbacks store the latest values here and poke the program; Update pulls them.
type feed struct {
	mu          sync.Mutex
	overview    overview
	overviewSeq uint64
	vm          *viewmodel.ViewModel
	vmSeq       uint64
	paint       []func()
	scroll      bool
	send        func(tea.Msg)
	cancels     []stream.Cancel
}

func (f *feed) attach(send func(tea.Msg)) {
	f.mu.Lock()
	f.send = send
	f.mu.Unlock()
}

func (f *feed) notify(msg tea.Msg) {
	f.mu.Lock()
	send := f.send
	f.mu.Unlock()
	if send != nil {
		// Send blocks until the event loop reads it, and stream callbacks may run
		// inside Update.
		go send(msg)
	}
}

func (f *feed) setOverview(o overview) {
	f.mu.Lock()
	f.overview = o
	f.overviewSeq++
	f.mu.Unlock()
	f.notify(refreshMsg{})
}

func (f *feed) setViewModel(vm viewmodel.ViewModel) {
	f.mu.Lock()
	f.vm = &vm
	f.vmSeq++
	f.mu.Unlock()
	f.notify(refreshMsg{})
}

// AfterPaint implements viewmodel.PaintScheduler.
func (f *feed) AfterPaint(fn func()) {
	f.mu.Lock()
	f.paint = append(f.paint, fn)
	f.mu.Unlock()
	f.notify(paintMsg{})
}

func (f *feed) requestScroll() {
	f.mu.Lock()
	f.scroll = true
	f.mu.Unlock()
}

func (f *feed) takePaint() []func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	fns := f.paint
	f.paint = nil
	return fns
}

func (f *feed) takeScroll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.scroll
	f.scroll = false
	return s
}

func (f *feed) latestOverview() (overview, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overview, f.overviewSeq
}

func (f *feed) latestViewModel() (*viewmodel.ViewModel, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vm, f.vmSeq
}

func (f *feed) close() {
	f.mu.Lock()
	cancels := f.cancels
	f.cancels = nil
	f.send = nil
	f.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}
