// Package quota evaluates plan ceilings against counts read by the caller.
//
// Every check fails once the current count has reached the ceiling, so with
// a ceiling of N the N-th addition passes and the (N+1)-th fails. A negative
// ceiling means unlimited; a ceiling of 0 blocks immediately.
package quota

import (
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/models"
)

// Unlimited is the ceiling value plans use for "no limit".
const Unlimited = -1

// CheckMaxEvents checks the number of events the user is already a member of.
func CheckMaxEvents(plan *models.Plan, memberOf int64) error {
	if reached(memberOf, resolve(plan).MaxEvents) {
		return exceeded("Max number of Events has been reached")
	}
	return nil
}

// CheckMaxItems checks the item count of event before one more is added.
func CheckMaxItems(plan *models.Plan, event *models.Event) error {
	if reached(int64(len(event.Items)), resolve(plan).MaxItems) {
		return exceeded("Max number of Items has been reached")
	}
	return nil
}

// CheckMaxPollItems checks a poll that already holds pollCount options
// before one more is added.
func CheckMaxPollItems(plan *models.Plan, pollCount int) error {
	if reached(int64(pollCount), resolve(plan).MaxPollItems) {
		return exceeded("Max number of Poll Items has been reached")
	}
	return nil
}

// CheckMaxMembers checks the event's member count plus the members about to be invited.
func CheckMaxMembers(plan *models.Plan, event *models.Event, adding int) error {
	if reached(int64(len(event.Members)+adding), resolve(plan).MaxMembers) {
		return exceeded("Max number of members has been reached")
	}
	return nil
}

// IsUnlimited reports whether a ceiling imposes no limit.
func IsUnlimited(ceiling int) bool {
	return ceiling < 0
}

func reached(count int64, ceiling int) bool {
	if IsUnlimited(ceiling) {
		return false
	}
	return count >= int64(ceiling)
}

func resolve(plan *models.Plan) *models.Plan {
	if plan != nil {
		return plan
	}
	def := models.DefaultMemberPlan()
	return &def
}

func exceeded(message string) error {
	return apierrors.BadRequest(apierrors.ErrCodeQuotaExceeded, message)
}
