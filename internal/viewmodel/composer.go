// Package viewmodel joins the route, the two stores and the transient modal state
// into the single record a checklist screen renders.
package viewmodel

import (
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
)

type ChecklistSource interface {
	GetByID(id string) stream.Stream[*model.Checklist]
}

type ItemSource interface {
	GetItemsByChecklistID(checklistID string) stream.Stream[[]model.ChecklistItem]
}

// PaintScheduler defers fn until the next time the screen is drawn.
type PaintScheduler interface {
	AfterPaint(fn func())
}

// PaintFunc adapts a plain function to PaintScheduler.
type PaintFunc func(fn func())

func (f PaintFunc) AfterPaint(fn func()) { f(fn) }

type ViewModel struct {
	Checklist                  model.Checklist       `json:"checklist"`
	Items                      []model.ChecklistItem `json:"items"`
	FormModalIsOpen            bool                  `json:"formModalIsOpen"`
	ChecklistItemIDBeingEdited *string               `json:"checklistItemIdBeingEdited"`
}

type composeOptions struct {
	paint  PaintScheduler
	scroll func()
}

type ComposeOption func(*composeOptions)

// WithScrollToEnd schedules scroll on paint every time the checklist or its items
// change.
func WithScrollToEnd(paint PaintScheduler, scroll func()) ComposeOption {
	return func(o *composeOptions) {
		o.paint = paint
		o.scroll = scroll
	}
}

type checklistWithItems = stream.Pair[*model.Checklist, []model.ChecklistItem]

// Compose follows the checklist named by the latest route value. Nothing is emitted
// until that checklist exists and both transient cells have a value; after that any
// input change produces one ViewModel. A route change drops the previous checklist's
// subscriptions.
func Compose(
	route stream.Stream[string],
	checklists ChecklistSource,
	items ItemSource,
	modalOpen stream.Stream[bool],
	editing stream.Stream[*string],
	opts ...ComposeOption,
) stream.Stream[ViewModel] {
	var o composeOptions
	for _, opt := range opts {
		opt(&o)
	}

	active := stream.SwitchMap(route, func(id string) stream.Stream[checklistWithItems] {
		resolved := stream.Filter(checklists.GetByID(id), func(c *model.Checklist) bool { return c != nil })
		return stream.CombineLatest2(resolved, items.GetItemsByChecklistID(id))
	})
	if o.paint != nil && o.scroll != nil {
		active = stream.Tap(active, func(checklistWithItems) { o.paint.AfterPaint(o.scroll) })
	}

	joined := stream.CombineLatest3(active, modalOpen, editing)
	return stream.Map(joined, func(t stream.Triple[checklistWithItems, bool, *string]) ViewModel {
		return Build(t.First.First, t.First.Second, t.Second, t.Third)
	})
}

// Build is the pure mapping from the four latest inputs to a ViewModel. The result
// shares nothing with its arguments.
func Build(checklist *model.Checklist, items []model.ChecklistItem, formModalIsOpen bool, editing *string) ViewModel {
	vm := ViewModel{
		Items:           make([]model.ChecklistItem, len(items)),
		FormModalIsOpen: formModalIsOpen,
	}
	if checklist != nil {
		vm.Checklist = *checklist
	}
	copy(vm.Items, items)
	if editing != nil {
		id := *editing
		vm.ChecklistItemIDBeingEdited = &id
	}
	return vm
}
