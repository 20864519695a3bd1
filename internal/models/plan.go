package models

type PlanName string

const (
	PlanFounder PlanName = "FOUNDER"
	PlanMember  PlanName = "MEMBER"
)

// Plan is a quota template shared by many users. A negative ceiling means unlimited.
type Plan struct {
	ID                uint64   `gorm:"primarykey" json:"id"`
	Name              PlanName `gorm:"type:varchar(20);uniqueIndex;not null" json:"name"`
	EnableAds         bool     `gorm:"not null" json:"enable_ads"`
	EnableInviteEmail bool     `gorm:"not null" json:"enable_invite_email"`
	MaxEvents         int      `gorm:"not null" json:"max_events"`
	MaxItems          int      `gorm:"not null" json:"max_items"`
	MaxPollItems      int      `gorm:"not null" json:"max_poll_items"`
	MaxMembers        int      `gorm:"not null" json:"max_members"`
}

// DefaultMemberPlan returns the plan every new user starts on.
func DefaultMemberPlan() Plan {
	return Plan{
		Name:              PlanMember,
		EnableAds:         true,
		EnableInviteEmail: false,
		MaxEvents:         2,
		MaxItems:          10,
		MaxPollItems:      5,
		MaxMembers:        10,
	}
}

// DefaultFounderPlan returns the unlimited plan.
func DefaultFounderPlan() Plan {
	return Plan{
		Name:              PlanFounder,
		EnableAds:         false,
		EnableInviteEmail: true,
		MaxEvents:         -1,
		MaxItems:          -1,
		MaxPollItems:      -1,
		MaxMembers:        -1,
	}
}
