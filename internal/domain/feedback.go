package domain

import "time"

// FeedbackStatus tracks whether a feedback is visible to anonymous readers.
type FeedbackStatus string

const (
	StatusDraft     FeedbackStatus = "draft"
	StatusPublished FeedbackStatus = "published"
)

// Rating criteria seeded by the initial migration. CriterionOverall
// carries the author's global rating of the record.
const (
	CriterionOverall      = 0
	CriterionCompleteness = 1
	CriterionReadability  = 2
	CriterionFindability  = 3
	CriterionOther        = 4
)

// Criteria maps every known criterion id to its name.
var Criteria = map[int]string{
	CriterionOverall:      "overall",
	CriterionCompleteness: "completeness",
	CriterionReadability:  "readability",
	CriterionFindability:  "findability",
	CriterionOther:        "other",
}

// Rating bounds for a single criterion value.
const (
	MinRating = 1
	MaxRating = 5
)

// Author identifies who wrote a feedback. UserID is set for registered
// principals; anonymous authors only carry the free-form fields.
type Author struct {
	UserID       *string
	Name         string
	Email        string
	Organization string
	Privacy      bool
}

// UserFeedback is a rating and comment left on one metadata record.
type UserFeedback struct {
	UUID          string
	MetadataUUID  string
	MetadataTitle string
	ParentUUID    *string
	Comment       string
	Ratings       map[int]int
	Keywords      []string
	Author        Author
	Status        FeedbackStatus
	ApproverID    *string
	CreatedAt     time.Time
}

// Published reports whether the feedback is visible to everyone.
func (f UserFeedback) Published() bool {
	return f.Status == StatusPublished
}

// RatingAverage aggregates the ratings of a set of feedback. It is computed
// on demand and never persisted.
type RatingAverage struct {
	Averages      map[int]float32
	RatingCount   int
	FeedbackCount int
}
