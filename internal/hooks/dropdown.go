// Package hooks holds client-side state containers backed by the inventory
// API and its change notifications.
package hooks

import (
	"context"
	"sync"

	"github.com/ukydev/vehicle-inventory/internal/models"
)

// Toaster shows a transient, user-visible error.
type Toaster interface {
	Error(title, message string)
}

// OptionsFetcher loads dropdown options.
type OptionsFetcher interface {
	DropdownOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownOption, error)
}

// DropdownState is a snapshot of a DropdownOptions hook. Options is never
// nil and is empty whenever Err is set.
type DropdownState struct {
	Category   string
	ActiveOnly bool
	Options    []models.DropdownOption
	IsLoading  bool
	Err        error
}

// DropdownOptions tracks the options of one category.
type DropdownOptions struct {
	api   OptionsFetcher
	toast Toaster

	mu     sync.Mutex
	state  DropdownState
	hasKey bool
	gen    uint64
}

// NewDropdownOptions creates an empty hook. Nothing is fetched until Set.
func NewDropdownOptions(api OptionsFetcher, toast Toaster) *DropdownOptions {
	return &DropdownOptions{
		api:   api,
		toast: toast,
		state: DropdownState{Options: []models.DropdownOption{}},
	}
}

// State returns the current snapshot.
func (d *DropdownOptions) State() DropdownState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

func (d *DropdownOptions) snapshot() DropdownState {
	s := d.state
	s.Options = append([]models.DropdownOption{}, d.state.Options...)
	return s
}

// Set points the hook at category/activeOnly and fetches if either changed.
// It returns the state once the fetch it started (or a newer one) settles.
func (d *DropdownOptions) Set(ctx context.Context, category string, activeOnly bool) DropdownState {
	d.mu.Lock()
	if d.hasKey && d.state.Category == category && d.state.ActiveOnly == activeOnly {
		s := d.snapshot()
		d.mu.Unlock()
		return s
	}
	d.hasKey = true
	d.state.Category = category
	d.state.ActiveOnly = activeOnly
	d.mu.Unlock()

	return d.Refresh(ctx)
}

// Refresh refetches the current key. A response that arrives after a newer
// fetch has started is discarded.
func (d *DropdownOptions) Refresh(ctx context.Context) DropdownState {
	d.mu.Lock()
	if !d.hasKey {
		s := d.snapshot()
		d.mu.Unlock()
		return s
	}
	d.gen++
	gen := d.gen
	category, activeOnly := d.state.Category, d.state.ActiveOnly
	d.state.IsLoading = true
	d.mu.Unlock()

	options, err := d.api.DropdownOptions(ctx, category, activeOnly)

	d.mu.Lock()
	if gen != d.gen {
		s := d.snapshot()
		d.mu.Unlock()
		return s
	}
	d.state.IsLoading = false
	if err != nil {
		d.state.Options = []models.DropdownOption{}
		d.state.Err = err
	} else {
		if options == nil {
			options = []models.DropdownOption{}
		}
		d.state.Options = options
		d.state.Err = nil
	}
	s := d.snapshot()
	d.mu.Unlock()

	if err != nil && d.toast != nil {
		d.toast.Error("Error loading options", err.Error())
	}
	return s
}
