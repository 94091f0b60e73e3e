package viewmodel

import (
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrModalClosed       = errors.New("item form is not open")
	ErrNoActiveChecklist = errors.New("no checklist selected")
)

type ModalState int

const (
	Closed ModalState = iota
	CreatingNew
	EditingExisting
)

func (s ModalState) String() string {
	switch s {
	case CreatingNew:
		return "creating"
	case EditingExisting:
		return "editing"
	default:
		return "closed"
	}
}

// ItemStore is what the controller needs from the item store: the lookup the
// composer reads plus the mutations intents are routed to.
type ItemStore interface {
	ItemSource
	Add(in data.ItemInput, checklistID string) model.ChecklistItem
	Update(id string, upd data.ItemUpdate)
	Toggle(id string)
	Remove(id string)
	Reset(checklistID string)
}

// Controller owns the route and the item form of one checklist screen. Intents may
// be called from any goroutine.
type Controller struct {
	checklists ChecklistSource
	items      ItemStore
	log        logrus.FieldLogger

	route     *stream.Cell[string]
	modalOpen *stream.Cell[bool]
	editing   *stream.Cell[*string]

	mu        sync.Mutex
	state     ModalState
	editingID string
	formTitle string
}

func NewController(checklists ChecklistSource, items ItemStore, log logrus.FieldLogger) *Controller {
	if log == nil {
		discard := logrus.New()
		discard.SetLevel(logrus.PanicLevel)
		log = discard
	}
	return &Controller{
		checklists: checklists,
		items:      items,
		log:        log.WithField("component", "controller"),
		route:      stream.NewCell(""),
		modalOpen:  stream.NewCell(false),
		editing:    stream.NewCell[*string](nil, stream.WithClone(cloneStringPtr)),
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// ViewModel composes the screen for the current route.
func (c *Controller) ViewModel(opts ...ComposeOption) stream.Stream[ViewModel] {
	return Compose(c.route, c.checklists, c.items, c.modalOpen, c.editing, opts...)
}

func (c *Controller) Navigate(checklistID string) {
	c.route.Set(checklistID)
}

func (c *Controller) ActiveChecklistID() string {
	return c.route.Value()
}

func (c *Controller) State() ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EditingID reports the item the form is editing, if any.
func (c *Controller) EditingID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID, c.state == EditingExisting
}

// FormTitle is the value the form should be pre-filled with.
func (c *Controller) FormTitle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formTitle
}

// AddItem opens an empty form for a new item.
func (c *Controller) AddItem() {
	c.mu.Lock()
	c.state = CreatingNew
	c.editingID = ""
	c.formTitle = ""
	c.mu.Unlock()

	c.editing.Set(nil)
	c.modalOpen.Set(true)
}

// EditItem opens the form on item, pre-filled with its current title.
func (c *Controller) EditItem(item model.ChecklistItem) {
	c.mu.Lock()
	c.state = EditingExisting
	c.editingID = item.ID
	c.formTitle = item.Title
	c.mu.Unlock()

	id := item.ID
	c.editing.Set(&id)
	c.modalOpen.Set(true)
}

// DismissModal closes the form and forgets its input. Calling it when the form is
// already closed is harmless.
func (c *Controller) DismissModal() {
	c.mu.Lock()
	c.state = Closed
	c.editingID = ""
	c.formTitle = ""
	c.mu.Unlock()

	c.editing.Set(nil)
	c.modalOpen.Set(false)
}

// SubmitForm saves the form: a new item in CreatingNew, a title change in
// EditingExisting. The title is stored as entered. On success the form is closed. A
// blank title keeps it open.
func (c *Controller) SubmitForm(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}

	c.mu.Lock()
	state, editingID := c.state, c.editingID
	c.mu.Unlock()

	switch state {
	case CreatingNew:
		checklistID := c.route.Value()
		if checklistID == "" {
			return ErrNoActiveChecklist
		}
		created := c.items.Add(data.ItemInput{Title: title}, checklistID)
		c.log.WithFields(logrus.Fields{"checklist": checklistID, "item": created.ID}).Debug("item added")
	case EditingExisting:
		c.items.Update(editingID, data.ItemUpdate{Title: &title})
		c.log.WithField("item", editingID).Debug("item updated")
	default:
		return ErrModalClosed
	}
	c.DismissModal()
	return nil
}

func (c *Controller) DeleteItem(id string) {
	c.items.Remove(id)
}

func (c *Controller) ToggleItem(id string) {
	c.items.Toggle(id)
}

func (c *Controller) ResetChecklist(checklistID string) {
	c.items.Reset(checklistID)
}
