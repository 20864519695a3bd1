package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/splitmate-api/internal/dto"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
)

func TestEventHandler_CreateEvent(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)

	w := doJSON(t, env.router(alice.ID), http.MethodPost, "/api/events", map[string]any{
		"name":        "Barbecue",
		"description": "Saturday at noon",
		"items": []map[string]any{
			{"name": "Charcoal"},
			{"name": "Sausages", "individual": true},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.EventDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Barbecue", response.Name)
	assert.Equal(t, alice.ID, response.Organizer.ID)
	assert.Equal(t, "alice", response.Organizer.Username)
	require.Len(t, response.Members, 1)
	require.Len(t, response.Items, 2)
	assert.Equal(t, "alice", response.Items[0].CreatedBy.Username)
	assert.True(t, response.Items[1].Individual)
	assert.Nil(t, response.Items[0].AssignedTo)
}

func TestEventHandler_CreateEventValidation(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	r := env.router(alice.ID)

	w := doJSON(t, r, http.MethodPost, "/api/events", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/events", map[string]any{
		"name":  "Barbecue",
		"items": []map[string]any{{"name": "Beer"}, {"name": "beer"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeDuplicateItem, decodeAPIError(t, w).Code)
}

func TestEventHandler_CreateEventQuota(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanMember)
	r := env.router(alice.ID)

	for i := 0; i < models.DefaultMemberPlan().MaxEvents; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/events", map[string]any{"name": fmt.Sprintf("Event %d", i)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/api/events", map[string]any{"name": "One too many"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeAPIError(t, w)
	assert.Equal(t, apierrors.ErrCodeQuotaExceeded, apiErr.Code)
	assert.Equal(t, "Max number of Events has been reached", apiErr.Message)
}

func TestEventHandler_GetEventNotFound(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	mallory := env.createUser(t, "mallory", models.PlanFounder)
	event := env.createEvent(t, alice)

	w := doJSON(t, env.router(mallory.ID), http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	apiErr := decodeAPIError(t, w)
	assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
	assert.Equal(t, map[string]any{"document": "event"}, apiErr.Details)

	w = doJSON(t, env.router(alice.ID), http.MethodGet, "/api/events/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandler_UpdateAndDeleteEvent(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	event := env.createEvent(t, alice)
	r := env.router(alice.ID)
	path := fmt.Sprintf("/api/events/%d", event.ID)

	w := doJSON(t, r, http.MethodPatch, path, map[string]any{"location": "Lakeside"})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.EventDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Picnic", response.Name)
	assert.Equal(t, "Lakeside", response.Location)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandler_ListEvents(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	bob := env.createUser(t, "bob", models.PlanFounder)
	env.createEvent(t, alice)
	bobsEvent := env.createEvent(t, bob)
	env.invite(t, bob, bobsEvent, "alice")
	r := env.router(alice.ID)

	w := doJSON(t, r, http.MethodGet, "/api/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.EventListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.Pagination.Total)
	require.Len(t, response.Events, 1)
	assert.Equal(t, 1, response.Events[0].MemberCount)

	w = doJSON(t, r, http.MethodGet, "/api/events?category=invited", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Events, 1)
	assert.Equal(t, bobsEvent.ID, response.Events[0].ID)

	w = doJSON(t, r, http.MethodGet, "/api/events?category=deleted", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCategory, decodeAPIError(t, w).Code)
}

func TestEventHandler_SendReminder(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	withItems := env.createEvent(t, alice, "Charcoal")
	empty := env.createEvent(t, alice)
	r := env.router(alice.ID)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/events/%d/reminder", withItems.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sent": 1}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/events/%d/reminder", empty.ID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeNoPendingItems, decodeAPIError(t, w).Code)
}

func TestEventHandler_SuggestionsNotConfigured(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "alice", models.PlanFounder)
	event := env.createEvent(t, alice)

	w := doJSON(t, env.router(alice.ID), http.MethodGet, fmt.Sprintf("/api/events/%d/suggestions", event.ID), nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
