package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belphemur/storefront/internal/hours"
	appSignals "github.com/belphemur/storefront/internal/signals"
)

type statusBody struct {
	ShopID           string             `json:"shopId"`
	At               time.Time          `json:"at"`
	SearchAfterClose bool               `json:"searchAfterClose"`
	Status           map[string]any     `json:"status"`
	Hours            []hours.SummaryRow `json:"hours"`
}

func getStatus(t *testing.T, env *testEnv, shopID, at string) (*statusBody, int) {
	t.Helper()
	target := "/api/shops/" + shopID + "/status"
	if at != "" {
		target += "?at=" + url.QueryEscape(at)
	}
	w := env.do(t, http.MethodGet, target, nil, false)
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var body statusBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return &body, w.Code
}

func TestStatus(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")

	tests := []struct {
		name     string
		at       string
		wantKind string
		wantText string
	}{
		{"handler clock is used by default", "", "open", "Open now • Closes at 18:00"},
		{"before opening", "2025-01-06T08:00:00Z", "closed_before_opening", "Closed • Opens at 09:00"},
		{"past closing keeps no detail", "2025-01-06T19:00:00Z", "closed_unknown", "Closed"},
		{"closed day finds next open day", "2025-01-05T12:00:00Z", "closed_until_future_day", "Closed • Opens Monday at 09:00"},
		{"offset is converted to the storefront zone", "2025-01-06T10:00:00+02:00", "closed_before_opening", "Closed • Opens at 09:00"},
		{"closing minute is closed", "2025-01-06T18:00:00Z", "closed_unknown", "Closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, code := getStatus(t, env, shop.ID, tt.at)
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, shop.ID, body.ShopID)
			assert.Equal(t, tt.wantKind, body.Status["kind"])
			assert.Equal(t, tt.wantText, body.Status["text"])
			assert.Equal(t, time.UTC.String(), body.At.Location().String())
		})
	}
}

func TestStatus_Summary(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")

	body, code := getStatus(t, env, shop.ID, "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body.Hours, 3)
	assert.Equal(t, hours.SummaryRow{Day: "Monday", Hours: "09:00 - 18:00", IsOpen: true, IsToday: true}, body.Hours[0])
	assert.Equal(t, hours.SummaryRow{Day: "Sunday", Hours: "Closed"}, body.Hours[2])
}

func TestStatus_SearchAfterClose(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")
	require.NoError(t, env.base.RuntimeConfig.Update(true, "UTC"))

	body, code := getStatus(t, env, shop.ID, "2025-01-06T19:00:00Z")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.SearchAfterClose)
	assert.Equal(t, "closed_until_future_day", body.Status["kind"])
	assert.Equal(t, "Tuesday", body.Status["nextOpenDay"])
}

func TestStatus_Errors(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")

	_, code := getStatus(t, env, shop.ID, "yesterday")
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = getStatus(t, env, "missing", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatus_EmptyScheduleIsClosed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	shop := env.createShop(t, "Bakery", "bakery")
	require.NoError(t, env.shops.SaveBusinessHours(ctx, shop.ID, hours.WeeklySchedule{}))

	body, code := getStatus(t, env, shop.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "closed_unknown", body.Status["kind"])
	assert.Empty(t, body.Hours)
}

func TestGetHours(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")

	w := env.do(t, http.MethodGet, "/api/shops/"+shop.ID+"/hours", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var body HoursResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, shop.ID, body.ShopID)
	assert.Equal(t, testSchedule, body.Hours)

	w = env.do(t, http.MethodGet, "/api/shops/missing/hours", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateHours(t *testing.T) {
	env := setupTestEnv(t)
	shop := env.createShop(t, "Bakery", "bakery")
	target := "/api/shops/" + shop.ID + "/hours"

	key := t.Name()
	t.Cleanup(func() { appSignals.RemoveListeners(key) })
	var mu sync.Mutex
	var notified []string
	appSignals.OnHoursUpdated(func(ctx context.Context, data appSignals.HoursUpdatedData) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, data.ShopID)
	}, key)

	update := UpdateHoursRequest{Hours: []DayHoursRequest{
		{Day: "Saturday", IsOpen: true, OpenTime: "10:00", CloseTime: "14:00"},
		{Day: "Monday", IsOpen: false},
	}}

	t.Run("requires admin", func(t *testing.T) {
		w := env.do(t, http.MethodPut, target, update, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("replaces the schedule", func(t *testing.T) {
		w := env.do(t, http.MethodPut, target, update, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stored, err := env.shops.GetBusinessHours(context.Background(), shop.ID)
		require.NoError(t, err)
		assert.Equal(t, update.Schedule(), stored, "stored order follows the request")

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(notified) == 1 && notified[0] == shop.ID
		}, time.Second, 10*time.Millisecond)

		body, code := getStatus(t, env, shop.ID, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "closed_until_future_day", body.Status["kind"])
		assert.Equal(t, "Saturday", body.Status["nextOpenDay"])
	})

	t.Run("rejects duplicate days and inverted times", func(t *testing.T) {
		bad := UpdateHoursRequest{Hours: []DayHoursRequest{
			{Day: "Monday", IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"},
			{Day: "Monday", IsOpen: false},
		}}
		w := env.do(t, http.MethodPut, target, bad, true)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, ErrCodeInvalidHours, resp.Error)
		require.Len(t, resp.Details, 2)
		assert.Contains(t, resp.Details[0], "must be before closing time")
		assert.Contains(t, resp.Details[1], "listed more than once")
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		w := env.do(t, http.MethodPut, target, `{"hours":[{"day":"Monday","isOpen":true,"openTime":"25:00","closeTime":"26:00"}]}`, true)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, ErrCodeValidationFailed, resp.Error)
		assert.Contains(t, strings.Join(resp.Details, "\n"), "hours[0].openTime: clocktime")
	})

	t.Run("unknown shop", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/shops/missing/hours", update, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
