package quota

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
)

func planWith(ceiling int) *models.Plan {
	return &models.Plan{
		Name:         models.PlanMember,
		MaxEvents:    ceiling,
		MaxItems:     ceiling,
		MaxPollItems: ceiling,
		MaxMembers:   ceiling,
	}
}

func eventWith(items, members int) *models.Event {
	event := &models.Event{}
	for i := 0; i < items; i++ {
		event.Items = append(event.Items, models.Item{ID: fmt.Sprint(i), Name: fmt.Sprintf("item-%d", i)})
	}
	for i := 0; i < members; i++ {
		event.Members = append(event.Members, models.EventMember{UserID: uint64(i + 1)})
	}
	return event
}

func TestUnlimitedCeilingNeverFails(t *testing.T) {
	for _, ceiling := range []int{-1, -2, -100} {
		plan := planWith(ceiling)
		for _, count := range []int{0, 1, 50, 10000} {
			assert.NoError(t, CheckMaxEvents(plan, int64(count)), "ceiling %d count %d", ceiling, count)
			assert.NoError(t, CheckMaxItems(plan, eventWith(count, 0)))
			assert.NoError(t, CheckMaxPollItems(plan, count))
			assert.NoError(t, CheckMaxMembers(plan, eventWith(0, count), 3))
		}
	}
}

func TestCeilingAllowsNthAndBlocksNextAddition(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10} {
		plan := planWith(n)

		// n-1 existing: adding the n-th passes
		require.NoError(t, CheckMaxEvents(plan, int64(n-1)))
		require.NoError(t, CheckMaxItems(plan, eventWith(n-1, 0)))
		require.NoError(t, CheckMaxPollItems(plan, n-1))

		// n existing: adding the (n+1)-th fails
		err := CheckMaxEvents(plan, int64(n))
		require.ErrorIs(t, err, apierrors.ErrQuotaExceeded)
		require.ErrorIs(t, CheckMaxItems(plan, eventWith(n, 0)), apierrors.ErrQuotaExceeded)
		require.ErrorIs(t, CheckMaxPollItems(plan, n), apierrors.ErrQuotaExceeded)
	}
}

func TestZeroCeilingBlocksImmediately(t *testing.T) {
	plan := planWith(0)

	assert.ErrorIs(t, CheckMaxEvents(plan, 0), apierrors.ErrQuotaExceeded)
	assert.ErrorIs(t, CheckMaxItems(plan, eventWith(0, 0)), apierrors.ErrQuotaExceeded)
	assert.ErrorIs(t, CheckMaxPollItems(plan, 0), apierrors.ErrQuotaExceeded)
	assert.ErrorIs(t, CheckMaxMembers(plan, eventWith(0, 0), 0), apierrors.ErrQuotaExceeded)
}

func TestCheckMaxMembersCountsInvitees(t *testing.T) {
	plan := planWith(4)
	event := eventWith(0, 2)

	assert.NoError(t, CheckMaxMembers(plan, event, 1))
	assert.ErrorIs(t, CheckMaxMembers(plan, event, 2), apierrors.ErrQuotaExceeded)
}

func TestQuotaErrorIsBadRequest(t *testing.T) {
	err := CheckMaxEvents(planWith(1), 1)

	var domainErr *apierrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apierrors.KindBadRequest, domainErr.Kind)
	assert.Equal(t, apierrors.ErrCodeQuotaExceeded, domainErr.Code)
	assert.Equal(t, "Max number of Events has been reached", domainErr.Message)
}

func TestNilPlanUsesMemberDefaults(t *testing.T) {
	def := models.DefaultMemberPlan()

	assert.NoError(t, CheckMaxEvents(nil, int64(def.MaxEvents-1)))
	assert.ErrorIs(t, CheckMaxEvents(nil, int64(def.MaxEvents)), apierrors.ErrQuotaExceeded)
}
