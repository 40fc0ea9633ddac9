package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samadammeek/core-geonetwork/internal/domain"
)

// FeedbackRepository provides persistence helpers for user feedback.
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

const feedbackColumns = `
    uuid,
    metadata_uuid,
    metadata_title,
    parent_uuid,
    comment,
    ratings,
    keywords,
    author_user_id,
    author_name,
    author_email,
    author_organization,
    author_privacy,
    status,
    approver_id,
    created_at
`

// FeedbackListFilters narrows a feedback listing. A non-positive Limit
// returns every matching row.
type FeedbackListFilters struct {
	MetadataUUID  *string
	PublishedOnly bool
	Limit         int
}

// Create inserts a feedback row and returns the stored entity.
func (r *FeedbackRepository) Create(ctx context.Context, fb domain.UserFeedback) (domain.UserFeedback, error) {
	ratingsJSON, err := marshalRatings(fb.Ratings)
	if err != nil {
		return domain.UserFeedback{}, err
	}
	keywords := fb.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	query := fmt.Sprintf(`
        INSERT INTO user_feedback (uuid, metadata_uuid, metadata_title, parent_uuid, comment, ratings, keywords,
                                   author_user_id, author_name, author_email, author_organization, author_privacy,
                                   status, approver_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING %s
    `, feedbackColumns)

	row := r.pool.QueryRow(ctx, query,
		fb.UUID, fb.MetadataUUID, fb.MetadataTitle, fb.ParentUUID, fb.Comment, ratingsJSON, keywords,
		fb.Author.UserID, fb.Author.Name, fb.Author.Email, fb.Author.Organization, fb.Author.Privacy,
		string(fb.Status), fb.ApproverID, fb.CreatedAt)
	return scanFeedback(row)
}

// Get fetches a feedback by uuid. With publishedOnly set, drafts are reported as missing.
func (r *FeedbackRepository) Get(ctx context.Context, uuid string, publishedOnly bool) (domain.UserFeedback, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_feedback WHERE uuid = $1`, feedbackColumns)
	args := []interface{}{uuid}
	if publishedOnly {
		query += " AND status = $2"
		args = append(args, string(domain.StatusPublished))
	}

	fb, err := scanFeedback(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserFeedback{}, ErrNotFound
		}
		return domain.UserFeedback{}, err
	}
	return fb, nil
}

// List returns feedback matching the filters, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filters FeedbackListFilters) ([]domain.UserFeedback, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.MetadataUUID != nil && strings.TrimSpace(*filters.MetadataUUID) != "" {
		where = append(where, fmt.Sprintf("metadata_uuid = %s", arg(strings.TrimSpace(*filters.MetadataUUID))))
	}
	if filters.PublishedOnly {
		where = append(where, fmt.Sprintf("status = %s", arg(string(domain.StatusPublished))))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(feedbackColumns)
	queryBuilder.WriteString(" FROM user_feedback")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, uuid DESC")
	if filters.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))
	}

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.UserFeedback, 0)
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a feedback by uuid.
func (r *FeedbackRepository) Delete(ctx context.Context, uuid string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_feedback WHERE uuid = $1`, uuid)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Publish marks a feedback as published and records the approving principal.
func (r *FeedbackRepository) Publish(ctx context.Context, uuid string, approverID *string) (domain.UserFeedback, error) {
	query := fmt.Sprintf(`
        UPDATE user_feedback
        SET status = $2,
            approver_id = $3
        WHERE uuid = $1
        RETURNING %s
    `, feedbackColumns)

	fb, err := scanFeedback(r.pool.QueryRow(ctx, query, uuid, string(domain.StatusPublished), approverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserFeedback{}, ErrNotFound
		}
		return domain.UserFeedback{}, err
	}
	return fb, nil
}

func scanFeedback(row pgx.Row) (domain.UserFeedback, error) {
	var (
		fb          domain.UserFeedback
		ratingsJSON []byte
		status      string
	)

	err := row.Scan(
		&fb.UUID,
		&fb.MetadataUUID,
		&fb.MetadataTitle,
		&fb.ParentUUID,
		&fb.Comment,
		&ratingsJSON,
		&fb.Keywords,
		&fb.Author.UserID,
		&fb.Author.Name,
		&fb.Author.Email,
		&fb.Author.Organization,
		&fb.Author.Privacy,
		&status,
		&fb.ApproverID,
		&fb.CreatedAt,
	)
	if err != nil {
		return domain.UserFeedback{}, err
	}
	fb.Status = domain.FeedbackStatus(status)

	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &fb.Ratings); err != nil {
			return domain.UserFeedback{}, fmt.Errorf("decode ratings: %w", err)
		}
	}
	return fb, nil
}

func marshalRatings(ratings map[int]int) ([]byte, error) {
	if ratings == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(ratings)
}
