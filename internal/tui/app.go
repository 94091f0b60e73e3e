package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/stream"
	"github.com/AntohaY/quicklists/internal/viewmodel"
)

type view int

const (
	viewChecklists view = iota
	viewChecklist
)

// prompt is the checklist-level input; the item form belongs to the controller.
type prompt int

const (
	promptNone prompt = iota
	promptNewChecklist
	promptRenameChecklist
)

// Stores is what the TUI runs against.
type Stores struct {
	Checklists *data.ChecklistStore
	Items      *data.ItemStore
	// SaveState reports snapshots not yet written and the last save failure.
	SaveState func() (pending int, err error)
	Logger    logrus.FieldLogger
}

type appModel struct {
	stores Stores
	ctrl   *viewmodel.Controller
	feed   *feed

	width  int
	height int

	view   view
	prompt prompt

	checklistsList list.Model
	itemsList      list.Model
	input          textinput.Model

	renamingID string
	status     string

	overview    overview
	overviewSeq uint64
	vm          *viewmodel.ViewModel
	vmSeq       uint64
	itemCount   int
}

func newAppModel(s Stores) appModel {
	f := &feed{}
	m := appModel{
		stores:         s,
		ctrl:           viewmodel.NewController(s.Checklists, s.Items, s.Logger),
		feed:           f,
		view:           viewChecklists,
		checklistsList: newList("Checklists", true),
		itemsList:      newList("Items", false),
		input:          newInput(),
	}

	f.cancels = append(f.cancels,
		stream.CombineLatest2(s.Checklists.GetAll(), s.Items.GetAll()).Subscribe(f.setOverview),
		m.ctrl.ViewModel(viewmodel.WithScrollToEnd(f, f.requestScroll)).Subscribe(f.setViewModel),
	)
	m.sync()
	return m
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	return ti
}

func (m appModel) Init() tea.Cmd { return nil }

// sync pulls the latest stream values out of the feed.
func (m *appModel) sync() {
	if o, seq := m.feed.latestOverview(); seq != m.overviewSeq {
		m.overview, m.overviewSeq = o, seq
		curID := ""
		if it, ok := m.checklistsList.SelectedItem().(checklistRow); ok {
			curID = it.checklist.ID
		}
		m.checklistsList.SetItems(checklistRows(o.First, o.Second))
		if curID != "" {
			selectListItemByID(&m.checklistsList, curID)
		}
	}
	if vm, seq := m.feed.latestViewModel(); seq != m.vmSeq {
		m.vm, m.vmSeq = vm, seq
		if m.activeViewModel() != nil {
			curID := ""
			if it, ok := m.itemsList.SelectedItem().(itemRow); ok {
				curID = it.item.ID
			}
			m.itemsList.SetItems(itemRows(vm.Items))
			if curID != "" {
				selectListItemByID(&m.itemsList, curID)
			}
		}
	}
}

// activeViewModel is the latest view model if it belongs to the open checklist.
// Until the checklist resolves the screen shows a loading state.
func (m appModel) activeViewModel() *viewmodel.ViewModel {
	if m.vm == nil || m.vm.Checklist.ID != m.ctrl.ActiveChecklistID() {
		return nil
	}
	return m.vm
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.sync()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case refreshMsg:
		return m, nil

	case paintMsg:
		for _, fn := range m.feed.takePaint() {
			fn()
		}
		if m.feed.takeScroll() {
			m.scrollToEnd()
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m.updateActiveList(msg)
}

// scrollToEnd moves to the last item when the list grew, so a new item is in view.
// Edits and toggles keep the cursor where it is.
func (m *appModel) scrollToEnd() {
	vm := m.activeViewModel()
	if vm == nil || m.view != viewChecklist {
		return
	}
	n := len(vm.Items)
	if n > m.itemCount && n > 0 {
		m.itemsList.Select(n - 1)
	}
	m.itemCount = n
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.updatePrompt(msg)
	}
	if m.ctrl.State() != viewmodel.Closed {
		return m.updateItemForm(msg)
	}
	if m.activeList().FilterState() == list.Filtering {
		return m.updateActiveList(msg)
	}

	m.status = ""
	switch m.view {
	case viewChecklists:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			if it, ok := m.checklistsList.SelectedItem().(checklistRow); ok {
				m.openChecklist(it.checklist.ID)
			}
			return m, nil
		case "n":
			m.prompt = promptNewChecklist
			m.input.SetValue("")
			m.input.Placeholder = "Checklist title"
			cmd := m.input.Focus()
			return m, cmd
		case "r":
			if it, ok := m.checklistsList.SelectedItem().(checklistRow); ok {
				m.prompt = promptRenameChecklist
				m.renamingID = it.checklist.ID
				m.input.SetValue(it.checklist.Title)
				m.input.CursorEnd()
				cmd := m.input.Focus()
				return m, cmd
			}
			return m, nil
		case "d":
			if it, ok := m.checklistsList.SelectedItem().(checklistRow); ok {
				m.stores.Checklists.Remove(it.checklist.ID)
				m.status = "Deleted " + it.checklist.Title
				m.sync()
			}
			return m, nil
		}

	case viewChecklist:
		vm := m.activeViewModel()
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "backspace":
			m.view = viewChecklists
			return m, nil
		case "a", "n":
			if vm == nil {
				return m, nil
			}
			m.ctrl.AddItem()
			m.input.SetValue("")
			m.input.Placeholder = "Item title"
			m.sync()
			cmd := m.input.Focus()
			return m, cmd
		case "e", "enter":
			if it, ok := m.itemsList.SelectedItem().(itemRow); ok {
				m.ctrl.EditItem(it.item)
				m.input.SetValue(m.ctrl.FormTitle())
				m.input.CursorEnd()
				m.sync()
				cmd := m.input.Focus()
				return m, cmd
			}
			return m, nil
		case " ", "x":
			if it, ok := m.itemsList.SelectedItem().(itemRow); ok {
				m.ctrl.ToggleItem(it.item.ID)
				m.sync()
			}
			return m, nil
		case "d":
			if it, ok := m.itemsList.SelectedItem().(itemRow); ok {
				m.ctrl.DeleteItem(it.item.ID)
				m.sync()
			}
			return m, nil
		case "R":
			if vm != nil {
				m.ctrl.ResetChecklist(vm.Checklist.ID)
				m.status = "Unchecked all items"
				m.sync()
			}
			return m, nil
		}
	}
	return m.updateActiveList(msg)
}

func (m *appModel) openChecklist(id string) {
	m.view = viewChecklist
	m.itemsList.SetItems(nil)
	m.itemsList.ResetFilter()
	m.ctrl.DismissModal()
	m.ctrl.Navigate(id)
	m.sync()
	if vm := m.activeViewModel(); vm != nil {
		m.itemCount = len(vm.Items)
	} else {
		m.itemCount = 0
	}
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = viewmodel.ErrTitleRequired.Error()
			return m, nil
		}
		switch m.prompt {
		case promptNewChecklist:
			c := m.stores.Checklists.Add(title)
			m.sync()
			selectListItemByID(&m.checklistsList, c.ID)
		case promptRenameChecklist:
			m.stores.Checklists.Update(m.renamingID, data.ChecklistUpdate{Title: title})
			m.sync()
		}
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) closePrompt() {
	m.prompt = promptNone
	m.renamingID = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m appModel) updateItemForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.DismissModal()
		m.input.SetValue("")
		m.input.Blur()
		m.status = ""
		m.sync()
		return m, nil
	case "enter":
		if err := m.ctrl.SubmitForm(m.input.Value()); err != nil {
			m.status = err.Error()
			if !errors.Is(err, viewmodel.ErrTitleRequired) {
				m.ctrl.DismissModal()
				m.input.Blur()
			}
			m.sync()
			return m, nil
		}
		m.status = ""
		m.input.SetValue("")
		m.input.Blur()
		m.sync()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) activeList() *list.Model {
	if m.view == viewChecklist {
		return &m.itemsList
	}
	return &m.checklistsList
}

func (m appModel) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewChecklist:
		m.itemsList, cmd = m.itemsList.Update(msg)
	default:
		m.checklistsList, cmd = m.checklistsList.Update(msg)
	}
	return m, cmd
}

func (m *appModel) resizeLists() {
	// Header, breadcrumb, status and footer.
	h := m.height - 7
	if h < 5 {
		h = 5
	}
	w := m.width
	if w < 30 {
		w = 30
	}
	m.checklistsList.SetSize(w, h)
	m.itemsList.SetSize(w, h)
	m.input.Width = w - 8
}

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	fit := func(s string) string { return ansi.Truncate(s, width, "…") }

	header := headerStyle.Render("quicklists")
	if pending, err := m.saveState(); err != nil {
		header += " " + unsavedDot + " " + errorStyle.Render("changes not saved")
	} else if pending > 0 {
		header += " " + unsavedDot
	}

	var crumb, body string
	switch m.view {
	case viewChecklist:
		vm := m.activeViewModel()
		if vm == nil {
			crumb = "Checklists / " + m.ctrl.ActiveChecklistID()
			body = crumbStyle.Render("Loading…")
			break
		}
		done := 0
		for _, it := range vm.Items {
			if it.Checked {
				done++
			}
		}
		crumb = fmt.Sprintf("Checklists / %s  %d/%d", displayTitle(vm.Checklist.Title), done, len(vm.Items))
		if len(vm.Items) == 0 {
			body = crumbStyle.Render("No items yet. Press a to add one.")
		} else {
			body = m.itemsList.View()
		}
		if vm.FormModalIsOpen {
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderModal(itemFormTitle(vm)))
		}
	default:
		crumb = "Checklists"
		if len(m.checklistsList.Items()) == 0 {
			body = crumbStyle.Render("No checklists yet. Press n to create one.")
		} else {
			body = m.checklistsList.View()
		}
		switch m.prompt {
		case promptNewChecklist:
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderModal("New checklist"))
		case promptRenameChecklist:
			body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderModal("Rename checklist"))
		}
	}

	lines := []string{fit(header), fit(crumbStyle.Render(crumb)), body}
	if m.status != "" {
		lines = append(lines, fit(errorStyle.Render(m.status)))
	}
	lines = append(lines, fit(footerStyle.Render(m.helpLine())))
	return strings.Join(lines, "\n")
}

func itemFormTitle(vm *viewmodel.ViewModel) string {
	if vm.ChecklistItemIDBeingEdited != nil {
		return "Edit item"
	}
	return "New item"
}

func (m appModel) renderModal(title string) string {
	return modalStyle.Render(modalTitleStyle.Render(title) + "\n" + m.input.View())
}

func (m appModel) helpLine() string {
	switch {
	case m.prompt != promptNone || m.ctrl.State() != viewmodel.Closed:
		return "enter: save  esc: cancel"
	case m.view == viewChecklist:
		return "a: add  enter/e: edit  space/x: toggle  d: delete  R: reset  esc: back  q: quit"
	default:
		return "enter: open  n: new  r: rename  d: delete  /: filter  q: quit"
	}
}

func (m appModel) saveState() (int, error) {
	if m.stores.SaveState == nil {
		return 0, nil
	}
	return m.stores.SaveState()
}
