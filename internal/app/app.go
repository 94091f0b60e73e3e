// Package app wires storage, savers and stores into one running instance.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AntohaY/quicklists/internal/data"
	"github.com/AntohaY/quicklists/internal/model"
	"github.com/AntohaY/quicklists/internal/store"
)

type Options struct {
	Store  store.Options
	Logger logrus.FieldLogger
	// OnSaveError is called, from a saver goroutine, after each failed save.
	OnSaveError func(error)
	Data        []data.Option
}

type App struct {
	Checklists *data.ChecklistStore
	Items      *data.ItemStore

	backend        store.Backend
	checklistSaver *store.Saver[model.Checklist]
	itemSaver      *store.Saver[model.ChecklistItem]
	log            logrus.FieldLogger
}

// Open opens the configured backend and loads both collections.
func Open(ctx context.Context, opts Options) (*App, error) {
	backend, err := store.Open(ctx, opts.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backendName(opts.Store.Kind), err)
	}
	a := New(backend, opts)
	if err := a.Load(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func backendName(k store.BackendKind) string {
	if k == "" {
		return string(store.BackendSQLite)
	}
	return string(k)
}

// New builds an App on backend without loading anything.
func New(backend store.Backend, opts Options) *App {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	adapter := store.NewAdapter(backend)

	a := &App{
		backend: backend,
		log:     log,
	}
	a.checklistSaver = store.NewSaver[model.Checklist](adapter.SaveChecklists, store.SaverOpts{
		Name:    store.ChecklistsKey,
		Logger:  log,
		OnError: opts.OnSaveError,
	})
	a.itemSaver = store.NewSaver[model.ChecklistItem](adapter.SaveItems, store.SaverOpts{
		Name:    store.ChecklistItemsKey,
		Logger:  log,
		OnError: opts.OnSaveError,
	})

	dataOpts := append([]data.Option{data.WithLogger(log)}, opts.Data...)
	a.Items = data.NewItemStore(adapter, a.itemSaver, dataOpts...)
	a.Checklists = data.NewChecklistStore(adapter, a.checklistSaver, a.Items, dataOpts...)
	return a
}

// Load reads both collections concurrently. It is meant to run once, before any
// mutation.
func (a *App) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Checklists.Load(ctx) })
	g.Go(func() error { return a.Items.Load(ctx) })
	return g.Wait()
}

// Pending is the number of snapshots not yet written, across both collections.
func (a *App) Pending() int {
	return a.checklistSaver.Stats().Pending + a.itemSaver.Stats().Pending
}

// SaveErr returns the most recent save failure still standing, if any.
func (a *App) SaveErr() error {
	return errors.Join(a.checklistSaver.Stats().LastErr, a.itemSaver.Stats().LastErr)
}

// Flush waits for both savers to drain.
func (a *App) Flush(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.checklistSaver.Flush(ctx) })
	g.Go(func() error { return a.itemSaver.Flush(ctx) })
	return g.Wait()
}

// Close detaches the stores, writes everything still queued and closes the backend.
func (a *App) Close(ctx context.Context) error {
	a.Checklists.Close()
	a.Items.Close()

	var g errgroup.Group
	g.Go(func() error { return a.checklistSaver.Close(ctx) })
	g.Go(func() error { return a.itemSaver.Close(ctx) })
	flushErr := g.Wait()
	if flushErr != nil {
		a.log.WithError(flushErr).Warn("unsaved changes at shutdown")
	}
	return errors.Join(flushErr, a.backend.Close())
}
