package aggregate

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/showgoers/showgoers/internal/models"
)

// FallbackDisplayName decorates comments whose author profile the viewer
// cannot read. Row-level access rules make this an expected condition, not
// a fetch failure.
const FallbackDisplayName = "Concert Enthusiast"

var (
	ErrEmptyContent   = errors.New("comment content is empty")
	ErrContentTooLong = errors.New("comment content exceeds maximum length")
)

// ValidateComment trims raw and enforces the content bounds. It runs before
// any repository call so invalid input never reaches the store.
func ValidateComment(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > models.MaxCommentLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}

// ThreadComment is a comment decorated with its author's profile.
type ThreadComment struct {
	models.Comment
	Author models.Profile `json:"author"`
}

// DecorateThread orders comments oldest first and attaches author profiles,
// substituting the fallback name where a profile is not resolvable.
func DecorateThread(comments []models.Comment, profiles map[uuid.UUID]models.Profile) []ThreadComment {
	thread := make([]ThreadComment, 0, len(comments))
	for _, comment := range comments {
		author, ok := profiles[comment.UserID]
		if !ok {
			author = models.Profile{
				UserID:      comment.UserID,
				DisplayName: FallbackDisplayName,
			}
		}
		thread = append(thread, ThreadComment{Comment: comment, Author: author})
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
	return thread
}
