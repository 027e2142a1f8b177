package domain

import "strings"

// KeyScheme classifies a reputation-network user key. Keys arrive from the
// Ethos API as opaque tagged strings of the form "<scheme>:<value>"; they are
// parsed into typed variants at the boundary so the rest of the code never
// does prefix matching on raw strings.
type KeyScheme string

const (
	KeySchemeAddress KeyScheme = "address"
	KeySchemeSocial  KeyScheme = "social"
	KeySchemeUnknown KeyScheme = "unknown"
)

// socialServices enumerates the social-handle schemes the Ethos network emits.
var socialServices = map[string]bool{
	"twitter":   true,
	"x.com":     true,
	"github":    true,
	"discord":   true,
	"telegram":  true,
	"farcaster": true,
}

// UserKey is a single parsed user key.
type UserKey struct {
	Scheme  KeyScheme
	Service string // social service name, only set for KeySchemeSocial
	Value   string
	Raw     string
}

// ParseUserKey classifies a raw "<scheme>:<value>" key string. Strings
// without a separator, or with an unrecognised scheme, come back as
// KeySchemeUnknown with the full raw string preserved.
func ParseUserKey(raw string) UserKey {
	scheme, value, ok := strings.Cut(raw, ":")
	if !ok || value == "" {
		return UserKey{Scheme: KeySchemeUnknown, Raw: raw}
	}

	switch {
	case scheme == "address":
		return UserKey{Scheme: KeySchemeAddress, Value: value, Raw: raw}
	case socialServices[strings.ToLower(scheme)]:
		return UserKey{Scheme: KeySchemeSocial, Service: strings.ToLower(scheme), Value: value, Raw: raw}
	default:
		return UserKey{Scheme: KeySchemeUnknown, Value: value, Raw: raw}
	}
}

// ParseUserKeys parses an ordered key list, preserving order.
func ParseUserKeys(raw []string) []UserKey {
	keys := make([]UserKey, 0, len(raw))
	for _, r := range raw {
		keys = append(keys, ParseUserKey(r))
	}
	return keys
}

// ProfileStats summarises community feedback for a profile.
type ProfileStats struct {
	ReviewsPositive int `json:"reviews_positive"`
	ReviewsNeutral  int `json:"reviews_neutral"`
	ReviewsNegative int `json:"reviews_negative"`
	VouchesGiven    int `json:"vouches_given"`
	VouchesReceived int `json:"vouches_received"`
}

// Profile is a reputation-network member as seen by this service. It is
// assembled from the Ethos API at the platform boundary.
type Profile struct {
	ID               string       `json:"id"`
	DisplayName      string       `json:"display_name"`
	Username         string       `json:"username"`
	AvatarURL        string       `json:"avatar_url"`
	Description      string       `json:"description"`
	CredibilityScore int          `json:"credibility_score"`
	Keys             []UserKey    `json:"-"`
	ProfileURL       string       `json:"profile_url"`
	Stats            ProfileStats `json:"stats"`
}

// SettlementAddress returns the wallet address linked to the profile, taken
// from the first address-scheme key. The second return value is false when no
// address key exists.
func (p Profile) SettlementAddress() (string, bool) {
	for _, k := range p.Keys {
		if k.Scheme == KeySchemeAddress {
			return k.Value, true
		}
	}
	return "", false
}
