package httpserver

import (
	"strings"
	"time"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

type userFeedbackDTO struct {
	UUID               string      `json:"uuid,omitempty"`
	MetadataUUID       string      `json:"metadataUUID" validate:"required,max=255"`
	MetadataTitle      string      `json:"metadataTitle,omitempty"`
	CommentText        string      `json:"commentText" validate:"max=4000"`
	RatingAVG          *int        `json:"ratingAVG,omitempty" validate:"omitempty,gte=1,lte=5"`
	Rating             map[int]int `json:"rating,omitempty" validate:"omitempty,dive,keys,gte=0,lte=4,endkeys,gte=1,lte=5"`
	AuthorName         string      `json:"authorName,omitempty" validate:"max=255"`
	AuthorUserID       *string     `json:"authorUserId,omitempty"`
	AuthorEmail        string      `json:"authorEmail,omitempty" validate:"omitempty,email,max=255"`
	AuthorOrganization string      `json:"authorOrganization,omitempty" validate:"max=255"`
	AuthorPrivacy      bool        `json:"authorPrivacy"`
	Keywords           []string    `json:"keywords,omitempty" validate:"omitempty,max=32,dive,max=128"`
	ApproverName       *string     `json:"approverName,omitempty"`
	Published          bool        `json:"published"`
	Date               *time.Time  `json:"date,omitempty"`
	ParentUUID         *string     `json:"parentUuid,omitempty"`
}

type ratingAverageResponse struct {
	RatingAverages    map[int]float32 `json:"ratingAverages"`
	RatingCount       int             `json:"ratingCount"`
	UserfeedbackCount int             `json:"userfeedbackCount"`
}

// toDTO renders a feedback for the wire. Private author details are only
// kept when revealPrivate is set or the author did not ask for privacy.
func toDTO(fb domain.UserFeedback, revealPrivate bool) userFeedbackDTO {
	created := fb.CreatedAt
	dto := userFeedbackDTO{
		UUID:               fb.UUID,
		MetadataUUID:       fb.MetadataUUID,
		MetadataTitle:      fb.MetadataTitle,
		CommentText:        fb.Comment,
		Rating:             fb.Ratings,
		AuthorName:         fb.Author.Name,
		AuthorUserID:       fb.Author.UserID,
		AuthorEmail:        fb.Author.Email,
		AuthorOrganization: fb.Author.Organization,
		AuthorPrivacy:      fb.Author.Privacy,
		Keywords:           fb.Keywords,
		ApproverName:       fb.ApproverID,
		Published:          fb.Published(),
		Date:               &created,
		ParentUUID:         fb.ParentUUID,
	}
	if overall, ok := fb.Ratings[domain.CriterionOverall]; ok {
		dto.RatingAVG = &overall
	}
	if fb.Author.Privacy && !revealPrivate {
		dto.AuthorEmail = ""
		dto.AuthorOrganization = ""
	}
	return dto
}

func toDTOs(items []domain.UserFeedback, revealPrivate bool) []userFeedbackDTO {
	out := make([]userFeedbackDTO, 0, len(items))
	for _, fb := range items {
		out = append(out, toDTO(fb, revealPrivate))
	}
	return out
}

// fromDTO builds the feedback to store. Anonymous submissions stay drafts;
// an authenticated principal publishes directly under its own identity.
func fromDTO(dto userFeedbackDTO, principal *domain.Principal) domain.UserFeedback {
	ratings := make(map[int]int, len(dto.Rating)+1)
	for criterion, value := range dto.Rating {
		ratings[criterion] = value
	}
	if _, ok := ratings[domain.CriterionOverall]; !ok && dto.RatingAVG != nil {
		ratings[domain.CriterionOverall] = *dto.RatingAVG
	}

	fb := domain.UserFeedback{
		MetadataUUID: strings.TrimSpace(dto.MetadataUUID),
		ParentUUID:   normalizeStringPtr(dto.ParentUUID),
		Comment:      dto.CommentText,
		Ratings:      ratings,
		Keywords:     dto.Keywords,
		Status:       domain.StatusDraft,
		Author: domain.Author{
			Name:         strings.TrimSpace(dto.AuthorName),
			Email:        strings.TrimSpace(dto.AuthorEmail),
			Organization: strings.TrimSpace(dto.AuthorOrganization),
			Privacy:      dto.AuthorPrivacy,
		},
	}

	if principal != nil {
		id := principal.ID
		name := principal.Name
		if name == "" {
			name = principal.Username
		}
		fb.Author.UserID = &id
		fb.Author.Name = name
		fb.Author.Email = principal.Email
		fb.Author.Organization = principal.Organization
		fb.Status = domain.StatusPublished
	}
	return fb
}

func normalizeStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
