package ethos

import (
	"strconv"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// APIUser is the Ethos API v2 user representation.
type APIUser struct {
	ID          int64    `json:"id"`
	ProfileID   int64    `json:"profileId"`
	DisplayName string   `json:"displayName"`
	Username    string   `json:"username"`
	AvatarURL   string   `json:"avatarUrl"`
	Description string   `json:"description"`
	Score       int      `json:"score"`
	Status      string   `json:"status"`
	Userkeys    []string `json:"userkeys"`
	Stats       APIStats `json:"stats"`
	Links       APILinks `json:"links"`
}

// APIStats nests the review and vouch counters the API returns.
type APIStats struct {
	Review struct {
		Received struct {
			Negative int `json:"negative"`
			Neutral  int `json:"neutral"`
			Positive int `json:"positive"`
		} `json:"received"`
	} `json:"review"`
	Vouch struct {
		Given struct {
			Count int `json:"count"`
		} `json:"given"`
		Received struct {
			Count int `json:"count"`
		} `json:"received"`
	} `json:"vouch"`
}

// APILinks carries the profile permalink.
type APILinks struct {
	Profile string `json:"profile"`
}

// searchResponse is the envelope returned by /users/search.
type searchResponse struct {
	Values []APIUser `json:"values"`
	Total  int       `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

// Active reports whether the account is usable as a donation recipient.
func (u APIUser) Active() bool {
	return u.Status == "ACTIVE" && u.Username != ""
}

// ToDomainProfile converts the API user to a domain Profile, parsing the raw
// userkeys and filling the avatar and permalink fallbacks the API sometimes
// omits.
func (u APIUser) ToDomainProfile() domain.Profile {
	id := u.ProfileID
	if id == 0 {
		id = u.ID
	}

	displayName := u.DisplayName
	if displayName == "" {
		displayName = u.Username
	}

	avatar := u.AvatarURL
	if avatar == "" {
		avatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=" + u.Username
	}

	profileURL := u.Links.Profile
	if profileURL == "" {
		profileURL = "https://ethos.network/user/" + u.Username
	}

	return domain.Profile{
		ID:               strconv.FormatInt(id, 10),
		DisplayName:      displayName,
		Username:         u.Username,
		AvatarURL:        avatar,
		Description:      u.Description,
		CredibilityScore: u.Score,
		Keys:             domain.ParseUserKeys(u.Userkeys),
		ProfileURL:       profileURL,
		Stats: domain.ProfileStats{
			ReviewsPositive: u.Stats.Review.Received.Positive,
			ReviewsNeutral:  u.Stats.Review.Received.Neutral,
			ReviewsNegative: u.Stats.Review.Received.Negative,
			VouchesGiven:    u.Stats.Vouch.Given.Count,
			VouchesReceived: u.Stats.Vouch.Received.Count,
		},
	}
}
