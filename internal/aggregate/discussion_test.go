package aggregate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/showgoers/showgoers/internal/models"
)

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{
			name: "plain content",
			raw:  "can't wait for this one",
			want: "can't wait for this one",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  front row!  \n",
			want: "front row!",
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: ErrEmptyContent,
		},
		{
			name:    "whitespace only",
			raw:     " \t\n ",
			wantErr: ErrEmptyContent,
		},
		{
			name: "exactly at the limit",
			raw:  strings.Repeat("a", models.MaxCommentLength),
			want: strings.Repeat("a", models.MaxCommentLength),
		},
		{
			name:    "one over the limit",
			raw:     strings.Repeat("a", models.MaxCommentLength+1),
			wantErr: ErrContentTooLong,
		},
		{
			name:    "limit counts runes, not bytes",
			raw:     strings.Repeat("é", models.MaxCommentLength+1),
			wantErr: ErrContentTooLong,
		},
		{
			name: "multibyte content at the limit",
			raw:  strings.Repeat("é", models.MaxCommentLength),
			want: strings.Repeat("é", models.MaxCommentLength),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateComment(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecorateThreadFallsBackWhenProfilesUnresolvable(t *testing.T) {
	concertID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	comments := []models.Comment{
		{ID: uuid.New(), ConcertID: concertID, UserID: uuid.New(), Content: "one", CreatedAt: base},
		{ID: uuid.New(), ConcertID: concertID, UserID: uuid.New(), Content: "two", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), ConcertID: concertID, UserID: uuid.New(), Content: "three", CreatedAt: base.Add(2 * time.Minute)},
	}

	thread := DecorateThread(comments, map[uuid.UUID]models.Profile{})

	if len(thread) != 3 {
		t.Fatalf("thread length = %d, want 3", len(thread))
	}
	for i, entry := range thread {
		if entry.Author.DisplayName != FallbackDisplayName {
			t.Errorf("comment %d author = %q, want fallback %q", i, entry.Author.DisplayName, FallbackDisplayName)
		}
	}
}

func TestDecorateThreadOrdersOldestFirst(t *testing.T) {
	concertID := uuid.New()
	author := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	comments := []models.Comment{
		{ID: uuid.New(), ConcertID: concertID, UserID: author, Content: "later", CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), ConcertID: concertID, UserID: author, Content: "earlier", CreatedAt: base},
	}
	profiles := map[uuid.UUID]models.Profile{
		author: {UserID: author, DisplayName: "Sam"},
	}

	thread := DecorateThread(comments, profiles)

	if thread[0].Content != "earlier" || thread[1].Content != "later" {
		t.Fatalf("thread order wrong: [%s, %s]", thread[0].Content, thread[1].Content)
	}
	if thread[0].Author.DisplayName != "Sam" {
		t.Errorf("resolved author = %q, want Sam", thread[0].Author.DisplayName)
	}
}
