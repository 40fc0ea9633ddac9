package domain

import "strings"

// Profile is a catalog user profile. Profiles are ordered: a profile grants
// every permission of the profiles below it.
type Profile string

const (
	ProfileGuest          Profile = "Guest"
	ProfileRegisteredUser Profile = "RegisteredUser"
	ProfileEditor         Profile = "Editor"
	ProfileReviewer       Profile = "Reviewer"
	ProfileUserAdmin      Profile = "UserAdmin"
	ProfileAdministrator  Profile = "Administrator"
)

var profileRank = map[Profile]int{
	ProfileGuest:          0,
	ProfileRegisteredUser: 1,
	ProfileEditor:         2,
	ProfileReviewer:       3,
	ProfileUserAdmin:      4,
	ProfileAdministrator:  5,
}

// ParseProfile resolves a profile name case-insensitively. Unknown names map to Guest.
func ParseProfile(name string) Profile {
	for p := range profileRank {
		if strings.EqualFold(string(p), strings.TrimSpace(name)) {
			return p
		}
	}
	return ProfileGuest
}

// AtLeast reports whether p grants the permissions of other.
func (p Profile) AtLeast(other Profile) bool {
	rank, ok := profileRank[p]
	if !ok {
		return false
	}
	return rank >= profileRank[other]
}

// Principal is an authenticated caller.
type Principal struct {
	ID           string
	Username     string
	Name         string
	Email        string
	Organization string
	Profile      Profile
}

// IsReviewer reports whether the principal may moderate feedback.
func (p *Principal) IsReviewer() bool {
	return p != nil && p.Profile.AtLeast(ProfileReviewer)
}
