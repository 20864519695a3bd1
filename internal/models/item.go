package models

// Item is something an event needs. Items only exist inside an event.
type Item struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       string       `json:"type,omitempty"`
	Value      string       `json:"value,omitempty"`
	Individual bool         `json:"individual"`
	PollName   string       `json:"poll_name,omitempty"`
	Poll       []PollOption `json:"poll"`
	Details    []ItemDetail `json:"details"`
	CreatedBy  uint64       `json:"created_by"`
	AssignedTo *uint64      `json:"assigned_to"`
}

type ItemDetail struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PollOption is one candidate answer. Votes holds voter ids.
type PollOption struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Votes IDList `json:"votes"`
}

// IsPicked reports whether a member claimed the item.
func (i *Item) IsPicked() bool {
	return i.AssignedTo != nil
}

// FindPollOption returns a pointer into Poll, or nil.
func (i *Item) FindPollOption(optionID string) *PollOption {
	for idx := range i.Poll {
		if i.Poll[idx].ID == optionID {
			return &i.Poll[idx]
		}
	}
	return nil
}

// Vote moves voterID's vote to the option with optionID. Any earlier vote
// of the same voter on this item is withdrawn first.
func (i *Item) Vote(optionID string, voterID uint64) bool {
	target := i.FindPollOption(optionID)
	if target == nil {
		return false
	}
	for idx := range i.Poll {
		i.Poll[idx].Votes.Remove(voterID)
	}
	target.Votes.Add(voterID)
	return true
}
