package viewmodel

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/stream"
)

type harness struct {
	checklists *data.ChecklistStore
	items      *data.ItemStore
	ctrl       *Controller
}

func newHarness(t *testing.T) harness {
	t.Helper()
	n := 0
	items := data.NewItemStore(nil, nil, data.WithIDGenerator(func() string {
		n++
		return string(rune('0' + n))
	}))
	checklists := data.NewChecklistStore(nil, nil, items)
	return harness{
		checklists: checklists,
		items:      items,
		ctrl:       NewController(checklists, items, nil),
	}
}

func last[T any](t *testing.T, got *[]T) T {
	t.Helper()
	if len(*got) == 0 {
		t.Fatalf("expected at least one emission")
	}
	return (*got)[len(*got)-1]
}

func TestCompose_TripExample(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	h.items.Add(data.ItemInput{Title: "Passport"}, "trip")

	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()
	h.ctrl.Navigate("trip")

	want := ViewModel{
		Checklist: model.Checklist{ID: "trip", Title: "Trip"},
		Items:     []model.ChecklistItem{{ID: "1", ChecklistID: "trip", Title: "Passport", Checked: false}},
	}
	if len(*got) != 1 {
		t.Fatalf("expected exactly one view model, got %d", len(*got))
	}
	if diff := cmp.Diff(want, last(t, got)); diff != "" {
		t.Fatalf("view model (-want +got):\n%s", diff)
	}

	b, err := json.Marshal(last(t, got))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	const wantJSON = `{"checklist":{"id":"trip","title":"Trip"},"items":[{"id":"1","checklistId":"trip","title":"Passport","checked":false}],"formModalIsOpen":false,"checklistItemIdBeingEdited":null}`
	if string(b) != wantJSON {
		t.Fatalf("json = %s", b)
	}
}

func TestCompose_WaitsForChecklistToResolve(t *testing.T) {
	h := newHarness(t)
	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()

	h.ctrl.Navigate("trip")
	h.checklists.Add("Groceries")
	if len(*got) != 0 {
		t.Fatalf("expected no view model before trip exists, got %+v", *got)
	}

	h.checklists.Add("Trip")
	vm := last(t, got)
	if vm.Checklist.ID != "trip" || len(vm.Items) != 0 || vm.Items == nil {
		t.Fatalf("unexpected view model: %+v", vm)
	}
}

func TestCompose_ReemitsOnEveryInputChange(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()
	h.ctrl.Navigate("trip")

	item := h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	h.items.Toggle(item.ID)
	h.checklists.Update("trip", data.ChecklistUpdate{Title: "Holiday"})

	vm := last(t, got)
	if vm.Checklist.Title != "Holiday" || len(vm.Items) != 1 || !vm.Items[0].Checked {
		t.Fatalf("unexpected view model: %+v", vm)
	}
	if len(*got) != 4 {
		t.Fatalf("expected 4 emissions, got %d", len(*got))
	}
}

func TestCompose_RouteChangeDropsPreviousChecklist(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	h.checklists.Add("Groceries")
	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()

	h.ctrl.Navigate("trip")
	h.ctrl.Navigate("groceries")
	before := len(*got)
	h.items.Add(data.ItemInput{Title: "Milk"}, "groceries")
	h.items.Add(data.ItemInput{Title: "Passport"}, "trip")

	for _, vm := range (*got)[before:] {
		if vm.Checklist.ID != "groceries" {
			t.Fatalf("emission for stale route: %+v", vm)
		}
	}
	if vm := last(t, got); len(vm.Items) != 1 || vm.Items[0].Title != "Milk" {
		t.Fatalf("unexpected items: %+v", vm.Items)
	}
}

func TestCompose_ChecklistRemovalStopsEmitting(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	h.checklists.Add("Other")
	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()
	h.ctrl.Navigate("trip")
	h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	before := len(*got)

	h.checklists.Remove("trip")

	// The cascade empties the items; the checklist lookup then goes nil and is filtered.
	for _, vm := range (*got)[before:] {
		if vm.Checklist.ID != "trip" {
			t.Fatalf("unexpected view model after removal: %+v", vm)
		}
	}
	if vm := last(t, got); len(vm.Items) != 0 {
		t.Fatalf("expected cascaded items to be gone, got %+v", vm.Items)
	}
}

func TestCompose_SchedulesScrollOnPairChanges(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")

	var scheduled, scrolled int
	paint := PaintFunc(func(fn func()) {
		scheduled++
		fn()
	})
	_, cancel := stream.Collect(h.ctrl.ViewModel(WithScrollToEnd(paint, func() { scrolled++ })))
	defer cancel()

	h.ctrl.Navigate("trip")
	h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	h.ctrl.AddItem()

	if scheduled != 2 || scrolled != 2 {
		t.Fatalf("expected 2 scrolls (not for modal changes), got scheduled=%d scrolled=%d", scheduled, scrolled)
	}
}

func TestBuild_CopiesInputs(t *testing.T) {
	c := &model.Checklist{ID: "trip", Title: "Trip"}
	items := []model.ChecklistItem{{ID: "1", ChecklistID: "trip", Title: "Passport"}}
	id := "1"
	vm := Build(c, items, true, &id)

	items[0].Title = "changed"
	id = "2"
	c.Title = "changed"
	if vm.Items[0].Title != "Passport" || *vm.ChecklistItemIDBeingEdited != "1" || vm.Checklist.Title != "Trip" {
		t.Fatalf("view model shares memory with inputs: %+v", vm)
	}
}

func TestController_EditThenDismissResets(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	item := h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	got, cancel := stream.Collect(h.ctrl.ViewModel())
	defer cancel()
	h.ctrl.Navigate("trip")

	h.ctrl.EditItem(item)
	vm := last(t, got)
	if !vm.FormModalIsOpen || vm.ChecklistItemIDBeingEdited == nil || *vm.ChecklistItemIDBeingEdited != item.ID {
		t.Fatalf("expected edit modal open on %s, got %+v", item.ID, vm)
	}
	if h.ctrl.FormTitle() != "Passport" || h.ctrl.State() != EditingExisting {
		t.Fatalf("form not pre-filled: title=%q state=%s", h.ctrl.FormTitle(), h.ctrl.State())
	}

	for i := 0; i < 2; i++ {
		h.ctrl.DismissModal()
		vm = last(t, got)
		if vm.FormModalIsOpen || vm.ChecklistItemIDBeingEdited != nil {
			t.Fatalf("dismiss #%d left modal state: %+v", i+1, vm)
		}
		if h.ctrl.State() != Closed || h.ctrl.FormTitle() != "" {
			t.Fatalf("dismiss #%d: state=%s title=%q", i+1, h.ctrl.State(), h.ctrl.FormTitle())
		}
	}
}

func TestController_SubmitCreatesAndUpdates(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	h.ctrl.Navigate("trip")

	h.ctrl.AddItem()
	if err := h.ctrl.SubmitForm("  Passport "); err != nil {
		t.Fatalf("SubmitForm (create): %v", err)
	}
	items := h.items.Snapshot()
	if len(items) != 1 || items[0].Title != "  Passport " || items[0].ChecklistID != "trip" {
		t.Fatalf("unexpected items after create: %+v", items)
	}
	if h.ctrl.State() != Closed {
		t.Fatalf("expected form closed after submit, got %s", h.ctrl.State())
	}

	h.ctrl.EditItem(items[0])
	if err := h.ctrl.SubmitForm("Boarding pass\t"); err != nil {
		t.Fatalf("SubmitForm (edit): %v", err)
	}
	items = h.items.Snapshot()
	if len(items) != 1 || items[0].Title != "Boarding pass\t" {
		t.Fatalf("unexpected items after edit: %+v", items)
	}
}

func TestController_SubmitErrors(t *testing.T) {
	h := newHarness(t)

	if err := h.ctrl.SubmitForm("x"); !errors.Is(err, ErrModalClosed) {
		t.Fatalf("expected ErrModalClosed, got %v", err)
	}
	h.ctrl.AddItem()
	if err := h.ctrl.SubmitForm("   "); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if h.ctrl.State() != CreatingNew {
		t.Fatalf("blank submit closed the form")
	}
	if err := h.ctrl.SubmitForm("Passport"); !errors.Is(err, ErrNoActiveChecklist) {
		t.Fatalf("expected ErrNoActiveChecklist, got %v", err)
	}
	if n := len(h.items.Snapshot()); n != 0 {
		t.Fatalf("failed submits added %d items", n)
	}
}

func TestController_RoutesItemIntents(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	a := h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	b := h.items.Add(data.ItemInput{Title: "Tickets"}, "trip")

	h.ctrl.ToggleItem(a.ID)
	h.ctrl.ToggleItem(b.ID)
	h.ctrl.DeleteItem(b.ID)
	if items := h.items.Snapshot(); len(items) != 1 || !items[0].Checked {
		t.Fatalf("unexpected items after toggle/delete: %+v", items)
	}
	h.ctrl.ResetChecklist("trip")
	if items := h.items.Snapshot(); items[0].Checked {
		t.Fatalf("reset left item checked")
	}
}

func TestController_ViewModelReadableFromInsideADelivery(t *testing.T) {
	h := newHarness(t)
	h.checklists.Add("Trip")
	h.ctrl.Navigate("trip")

	var counts []int
	misses := 0
	defer h.items.GetAll().Subscribe(func([]model.ChecklistItem) {
		vm, ok := stream.Latest(h.ctrl.ViewModel())
		if !ok {
			misses++
			return
		}
		counts = append(counts, len(vm.Items))
	})()

	h.items.Add(data.ItemInput{Title: "Passport"}, "trip")
	h.items.Add(data.ItemInput{Title: "Tickets"}, "trip")

	if misses != 0 {
		t.Fatalf("view model missing in %d deliveries", misses)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, counts); diff != "" {
		t.Fatalf("item counts (-want +got):\n%s", diff)
	}
}
