package domain

// SettingLocalRatingEnable selects how record ratings behave.
const SettingLocalRatingEnable = "system/localrating/enable"

// RatingsSetting values accepted for SettingLocalRatingEnable. Only
// RatingsAdvanced enables the user feedback API.
const (
	RatingsOff      = "off"
	RatingsBasic    = "basic"
	RatingsAdvanced = "advanced"
)

// Record is the subset of a catalog metadata record this service needs.
type Record struct {
	UUID  string
	Title string
}
