package domain

import "time"

// SavedTalent is a profile bookmarked by a founder wallet. A founder can save
// each profile at most once.
type SavedTalent struct {
	ID               string    `json:"id"`
	FounderAddress   string    `json:"founderAddress"`
	ProfileID        string    `json:"profileId"`
	DisplayName      string    `json:"displayName,omitempty"`
	Username         string    `json:"username,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	CredibilityScore int       `json:"credibilityScore"`
	ProfileURL       string    `json:"profileUrl,omitempty"`
	SavedAt          time.Time `json:"savedAt"`
}
