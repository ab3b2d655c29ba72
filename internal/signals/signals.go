package signals

import (
	"context"

	"github.com/maniartech/signals"

	"github.com/belphemur/storefront/internal/hours"
)

// HoursUpdatedData contains data associated with a business hours write
type HoursUpdatedData struct {
	ShopID string
}

// StatusChangedData is emitted when a shop flips between open and closed
type StatusChangedData struct {
	ShopID   string
	Previous hours.Status
	Current  hours.Status
}

// SettingsUpdatedData contains the resolver settings after a dashboard write
type SettingsUpdatedData struct {
	SearchAfterClose bool
	Timezone         string
}

// Signal definitions using generics
var HoursUpdated = signals.New[HoursUpdatedData]()
var StatusChanged = signals.New[StatusChangedData]()
var SettingsUpdated = signals.New[SettingsUpdatedData]()

// EmitHoursUpdated emits a signal when a shop's hours were saved
func EmitHoursUpdated(ctx context.Context, shopID string) {
	HoursUpdated.Emit(ctx, HoursUpdatedData{
		ShopID: shopID,
	})
}

// EmitStatusChanged emits a signal when a shop opens or closes
func EmitStatusChanged(ctx context.Context, shopID string, previous, current hours.Status) {
	StatusChanged.Emit(ctx, StatusChangedData{
		ShopID:   shopID,
		Previous: previous,
		Current:  current,
	})
}

// EmitSettingsUpdated emits a signal when resolver settings were saved
func EmitSettingsUpdated(ctx context.Context, searchAfterClose bool, timezone string) {
	SettingsUpdated.Emit(ctx, SettingsUpdatedData{
		SearchAfterClose: searchAfterClose,
		Timezone:         timezone,
	})
}

// OnHoursUpdated registers a handler for hours update events
func OnHoursUpdated(handler func(ctx context.Context, data HoursUpdatedData), key ...string) {
	if len(key) > 0 {
		HoursUpdated.AddListener(handler, key[0])
	} else {
		HoursUpdated.AddListener(handler)
	}
}

// OnStatusChanged registers a handler for open/closed transitions
func OnStatusChanged(handler func(ctx context.Context, data StatusChangedData), key ...string) {
	if len(key) > 0 {
		StatusChanged.AddListener(handler, key[0])
	} else {
		StatusChanged.AddListener(handler)
	}
}

// OnSettingsUpdated registers a handler for settings update events
func OnSettingsUpdated(handler func(ctx context.Context, data SettingsUpdatedData), key ...string) {
	if len(key) > 0 {
		SettingsUpdated.AddListener(handler, key[0])
	} else {
		SettingsUpdated.AddListener(handler)
	}
}

// RemoveListeners drops the keyed listener from every signal
func RemoveListeners(key string) {
	HoursUpdated.RemoveListener(key)
	StatusChanged.RemoveListener(key)
	SettingsUpdated.RemoveListener(key)
}
