package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
)

func TestItemService_Add(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer)

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name:       strPtr("  Charcoal "),
		Individual: boolPtr(true),
		Details:    []models.ItemDetail{{Type: "note", Value: "two bags"}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)

	item := updated.Items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Charcoal", item.Name)
	assert.True(t, item.Individual)
	assert.Equal(t, organizer.ID, item.CreatedBy)
	assert.Nil(t, item.AssignedTo)

	stored := env.reloadEvent(t, event.ID)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, item.ID, stored.Items[0].ID)
	assert.Equal(t, []models.ItemDetail{{Type: "note", Value: "two bags"}}, stored.Items[0].Details)
}

func TestItemService_AddDuplicateName(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer, "Beer")

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{Name: strPtr("Beer")})
	assert.ErrorIs(t, err, apierrors.ErrDuplicateItem)

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{Name: strPtr(" beer ")})
	assert.ErrorIs(t, err, apierrors.ErrDuplicateItem)

	assert.Len(t, env.reloadEvent(t, event.ID).Items, 1)
}

func TestItemService_AddRespectsMaxItems(t *testing.T) {
	env := setupServiceTestEnv(t)

	plan := env.customPlan(t, func(p *models.Plan) { p.MaxItems = 1 })
	organizer := env.createUser(t, "alice", plan)
	event := env.createEvent(t, organizer, "Beer")

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{Name: strPtr("Wine")})
	assert.ErrorIs(t, err, apierrors.ErrQuotaExceeded)
}

func TestItemService_EditIsPartial(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer, "Beer")
	itemID := event.Items[0].ID

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemEdit, ItemInput{
		ID:    itemID,
		Value: strPtr("12.50"),
	})
	require.NoError(t, err)

	stored := env.reloadEvent(t, event.ID).FindItem(itemID)
	require.NotNil(t, stored)
	assert.Equal(t, "Beer", stored.Name)
	assert.Equal(t, "12.50", stored.Value)
	assert.Equal(t, organizer.ID, stored.CreatedBy)

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemEdit, ItemInput{ID: "missing", Value: strPtr("1")})
	assert.ErrorIs(t, err, apierrors.ErrItemNotFound)
}

func TestItemService_EditPollKeepsVotes(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer)

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name:     strPtr("Dinner"),
		PollName: strPtr("Where?"),
		Poll:     []PollOptionInput{{Value: "Pizza"}, {Value: "Sushi"}},
	})
	require.NoError(t, err)
	item := updated.Items[0]
	require.Len(t, item.Poll, 2)

	_, err = env.items.VotePoll(organizer.ID, event.ID, item.ID, item.Poll[1].ID)
	require.NoError(t, err)

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemEdit, ItemInput{
		ID: item.ID,
		Poll: []PollOptionInput{
			{ID: item.Poll[1].ID, Value: "Sushi bar"},
			{Value: "Tacos"},
		},
	})
	require.NoError(t, err)

	stored := env.reloadEvent(t, event.ID).FindItem(item.ID)
	require.NotNil(t, stored)
	require.Len(t, stored.Poll, 2)
	assert.Equal(t, "Where?", stored.PollName)
	assert.Equal(t, item.Poll[1].ID, stored.Poll[0].ID)
	assert.Equal(t, "Sushi bar", stored.Poll[0].Value)
	assert.Equal(t, models.IDList{organizer.ID}, stored.Poll[0].Votes)
	assert.NotEmpty(t, stored.Poll[1].ID)
	assert.Empty(t, stored.Poll[1].Votes)
}

func TestItemService_EditPollRespectsMaxPollItems(t *testing.T) {
	env := setupServiceTestEnv(t)

	plan := env.customPlan(t, func(p *models.Plan) { p.MaxPollItems = 2 })
	organizer := env.createUser(t, "alice", plan)
	event := env.createEvent(t, organizer)

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name: strPtr("Dinner"),
		Poll: []PollOptionInput{{Value: "Pizza"}, {Value: "Sushi"}},
	})
	require.NoError(t, err)
	item := updated.Items[0]

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemEdit, ItemInput{
		ID:   item.ID,
		Poll: []PollOptionInput{{ID: item.Poll[0].ID, Value: "Pizza"}, {ID: item.Poll[1].ID, Value: "Sushi"}, {Value: "Tacos"}},
	})
	assert.ErrorIs(t, err, apierrors.ErrQuotaExceeded)
	assert.Len(t, env.reloadEvent(t, event.ID).FindItem(item.ID).Poll, 2)
}

func TestItemService_PickAndUnpick(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	bob := env.founder(t, "bob")
	event := env.createEvent(t, organizer, "Grill")
	env.addMember(t, event, bob)
	itemID := event.Items[0].ID

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemPick, ItemInput{ID: itemID})
	require.NoError(t, err)

	_, err = env.items.ApplyItemAction(bob.ID, event.ID, ItemPick, ItemInput{ID: itemID})
	assert.ErrorIs(t, err, apierrors.ErrAlreadyPicked)

	stored := env.reloadEvent(t, event.ID).FindItem(itemID)
	require.NotNil(t, stored.AssignedTo)
	assert.Equal(t, organizer.ID, *stored.AssignedTo)

	// any member may unpick
	_, err = env.items.ApplyItemAction(bob.ID, event.ID, ItemUnpick, ItemInput{ID: itemID})
	require.NoError(t, err)
	assert.Nil(t, env.reloadEvent(t, event.ID).FindItem(itemID).AssignedTo)

	_, err = env.items.ApplyItemAction(bob.ID, event.ID, ItemPick, ItemInput{ID: "missing"})
	assert.ErrorIs(t, err, apierrors.ErrItemNotFound)

	_, err = env.items.ApplyItemAction(bob.ID, event.ID, ItemUnpick, ItemInput{ID: "missing"})
	assert.ErrorIs(t, err, apierrors.ErrItemNotFound)
}

func TestItemService_Delete(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer, "Grill", "Chips", "Salad")

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemDelete, ItemInput{ID: event.Items[1].ID})
	require.NoError(t, err)

	stored := env.reloadEvent(t, event.ID)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Grill", stored.Items[0].Name)
	assert.Equal(t, "Salad", stored.Items[1].Name)

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemDelete, ItemInput{ID: event.Items[1].ID})
	assert.ErrorIs(t, err, apierrors.ErrItemNotFound)
}

func TestItemService_InvalidActionAndOutsider(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	outsider := env.founder(t, "mallory")
	event := env.createEvent(t, organizer, "Grill")

	_, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAction("steal"), ItemInput{ID: event.Items[0].ID})
	assert.ErrorIs(t, err, apierrors.ErrInvalidCommand)
	assert.Contains(t, err.Error(), "steal")

	_, err = env.items.ApplyItemAction(outsider.ID, event.ID, ItemPick, ItemInput{ID: event.Items[0].ID})
	assert.ErrorIs(t, err, apierrors.ErrEventNotFound)
}

func TestItemService_VotePollMovesVote(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	bob := env.founder(t, "bob")
	event := env.createEvent(t, organizer)
	env.addMember(t, event, bob)

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name: strPtr("Dinner"),
		Poll: []PollOptionInput{{Value: "Pizza"}, {Value: "Sushi"}},
	})
	require.NoError(t, err)
	item := updated.Items[0]

	_, err = env.items.VotePoll(bob.ID, event.ID, item.ID, item.Poll[0].ID)
	require.NoError(t, err)
	voted, err := env.items.VotePoll(bob.ID, event.ID, item.ID, item.Poll[1].ID)
	require.NoError(t, err)
	assert.Empty(t, voted.Poll[0].Votes)

	stored := env.reloadEvent(t, event.ID).FindItem(item.ID)
	total := 0
	for _, opt := range stored.Poll {
		if opt.Votes.Contains(bob.ID) {
			total++
		}
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, models.IDList{bob.ID}, stored.Poll[1].Votes)
}

func TestItemService_VotePollNotFound(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	outsider := env.founder(t, "mallory")
	event := env.createEvent(t, organizer, "Grill")

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name: strPtr("Dinner"),
		Poll: []PollOptionInput{{Value: "Pizza"}},
	})
	require.NoError(t, err)
	dinner := updated.FindItem(updated.Items[1].ID)

	_, err = env.items.VotePoll(outsider.ID, event.ID, dinner.ID, dinner.Poll[0].ID)
	assert.ErrorIs(t, err, apierrors.ErrEventNotFound)

	_, err = env.items.VotePoll(organizer.ID, event.ID, event.Items[0].ID, "any")
	assert.ErrorIs(t, err, apierrors.ErrPollNotFound)

	_, err = env.items.VotePoll(organizer.ID, event.ID, "missing", "any")
	assert.ErrorIs(t, err, apierrors.ErrPollNotFound)

	_, err = env.items.VotePoll(organizer.ID, event.ID, dinner.ID, "missing")
	assert.ErrorIs(t, err, apierrors.ErrPollOptionNotFound)
}

func TestItemService_EditPollRejectsRepeatedOption(t *testing.T) {
	env := setupServiceTestEnv(t)

	organizer := env.founder(t, "alice")
	event := env.createEvent(t, organizer)

	updated, err := env.items.ApplyItemAction(organizer.ID, event.ID, ItemAdd, ItemInput{
		Name: strPtr("Dinner"),
		Poll: []PollOptionInput{{Value: "Pizza"}, {Value: "Sushi"}},
	})
	require.NoError(t, err)
	item := updated.Items[0]

	_, err = env.items.VotePoll(organizer.ID, event.ID, item.ID, item.Poll[0].ID)
	require.NoError(t, err)

	_, err = env.items.ApplyItemAction(organizer.ID, event.ID, ItemEdit, ItemInput{
		ID: item.ID,
		Poll: []PollOptionInput{
			{ID: item.Poll[0].ID, Value: "Pizza"},
			{ID: item.Poll[0].ID, Value: "More pizza"},
		},
	})
	assert.ErrorIs(t, err, apierrors.ErrInvalidInput)

	stored := env.reloadEvent(t, event.ID).FindItem(item.ID)
	require.Len(t, stored.Poll, 2)
	assert.Equal(t, models.IDList{organizer.ID}, stored.Poll[0].Votes)
}

func TestMergePollCopiesVotes(t *testing.T) {
	current := []models.PollOption{{ID: "a", Value: "Pizza", Votes: models.IDList{1, 2}}}

	poll, err := mergePoll(current, []PollOptionInput{{ID: "a", Value: "Pizza"}})
	require.NoError(t, err)

	poll[0].Votes.Remove(1)
	assert.Equal(t, models.IDList{1, 2}, current[0].Votes)
	assert.Equal(t, models.IDList{2}, poll[0].Votes)
}
