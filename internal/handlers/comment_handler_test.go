package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/showgoers/showgoers/internal/aggregate"
	"github.com/showgoers/showgoers/internal/models"
)

func TestCreateCommentWhitespaceRejected(t *testing.T) {
	r, db := setupTest(t)
	user := createTestUser(t, db, "alice@example.com", "Alice")
	concert := createTestConcert(t, db, "Goldford", "2999-04-15")

	w := doRequest(t, r, http.MethodPost, "/v1/concerts/"+concert.ID.String()+"/comments",
		tokenFor(t, user), map[string]string{"content": "   \n\t  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("whitespace comment reached the store: %d rows", count)
	}
}

func TestCreateCommentLengthBoundary(t *testing.T) {
	r, db := setupTest(t)
	user := createTestUser(t, db, "alice@example.com", "Alice")
	concert := createTestConcert(t, db, "Bahamas", "2999-05-15")
	path := "/v1/concerts/" + concert.ID.String() + "/comments"
	token := tokenFor(t, user)

	w := doRequest(t, r, http.MethodPost, path, token,
		map[string]string{"content": strings.Repeat("a", models.MaxCommentLength+1)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("over-limit status = %d, want 400", w.Code)
	}

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("over-limit comment reached the store: %d rows", count)
	}

	w = doRequest(t, r, http.MethodPost, path, token,
		map[string]string{"content": strings.Repeat("a", models.MaxCommentLength)})
	if w.Code != http.StatusCreated {
		t.Fatalf("at-limit status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	db.Model(&models.Comment{}).Count(&count)
	if count != 1 {
		t.Fatalf("at-limit comment rows = %d, want 1", count)
	}
}

func TestCreateCommentDecoratedWithOwnProfile(t *testing.T) {
	r, db := setupTest(t)
	user := createTestUser(t, db, "alice@example.com", "Alice")
	concert := createTestConcert(t, db, "Mt. Joy", "2999-09-19")

	w := doRequest(t, r, http.MethodPost, "/v1/concerts/"+concert.ID.String()+"/comments",
		tokenFor(t, user), map[string]string{"content": "  who's going?  "})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["content"] != "who's going?" {
		t.Errorf("content = %v, want trimmed text", body["content"])
	}
	author, _ := body["author"].(map[string]interface{})
	if author == nil || author["display_name"] != "Alice" {
		t.Errorf("author = %v, want Alice's profile", body["author"])
	}
}

func TestDeleteCommentNonAuthorHasNoEffect(t *testing.T) {
	r, db := setupTest(t)
	alice := createTestUser(t, db, "alice@example.com", "Alice")
	bob := createTestUser(t, db, "bob@example.com", "Bob")
	concert := createTestConcert(t, db, "The Nude Party", "2999-04-23")

	comment := models.Comment{ConcertID: concert.ID, UserID: alice.ID, Content: "see you there"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// The scoped delete matches zero rows for a non-author; that is still
	// reported as success.
	w := doRequest(t, r, http.MethodDelete, "/v1/comments/"+comment.ID.String(), tokenFor(t, bob), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var count int64
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 1 {
		t.Fatalf("comment deleted by non-author")
	}

	w = doRequest(t, r, http.MethodDelete, "/v1/comments/"+comment.ID.String(), tokenFor(t, alice), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("author delete status = %d, want 200", w.Code)
	}
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 0 {
		t.Fatalf("author could not delete own comment")
	}
}

func TestListCommentsFallbackForUnresolvableAuthors(t *testing.T) {
	r, db := setupTest(t)
	concert := createTestConcert(t, db, "St. Paul & The Broken Bones", "2999-04-26")

	// Authors with no user row, as happens when profile rows are
	// restricted or the account is gone.
	for _, text := range []string{"first", "second", "third"} {
		comment := models.Comment{ConcertID: concert.ID, UserID: uuid.New(), Content: text}
		if err := db.Create(&comment).Error; err != nil {
			t.Fatalf("create comment: %v", err)
		}
	}

	w := doRequest(t, r, http.MethodGet, "/v1/concerts/"+concert.ID.String()+"/comments", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := decodeBody(t, w)
	comments, _ := body["comments"].([]interface{})
	if len(comments) != 3 {
		t.Fatalf("thread length = %d, want 3", len(comments))
	}
	for i, raw := range comments {
		entry := raw.(map[string]interface{})
		author := entry["author"].(map[string]interface{})
		if author["display_name"] != aggregate.FallbackDisplayName {
			t.Errorf("comment %d author = %v, want fallback", i, author["display_name"])
		}
	}
}
