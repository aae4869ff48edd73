package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showgoers/showgoers/internal/aggregate"
	"github.com/showgoers/showgoers/internal/helpers"
	"github.com/showgoers/showgoers/internal/middleware"
	"github.com/showgoers/showgoers/internal/models"
	"github.com/showgoers/showgoers/internal/notify"
)

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// loadProfiles resolves the authors of a comment set. Authors that cannot
// be resolved (deleted accounts, restricted rows) are simply absent from
// the map; the aggregate layer substitutes the fallback name.
func loadProfiles(db *gorm.DB, comments []models.Comment) map[uuid.UUID]models.Profile {
	profiles := make(map[uuid.UUID]models.Profile)
	if len(comments) == 0 {
		return profiles
	}

	seen := make(map[uuid.UUID]struct{}, len(comments))
	userIDs := make([]uuid.UUID, 0, len(comments))
	for _, comment := range comments {
		if _, dup := seen[comment.UserID]; dup {
			continue
		}
		seen[comment.UserID] = struct{}{}
		userIDs = append(userIDs, comment.UserID)
	}

	var users []models.User
	if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		log.Printf("Error fetching comment author profiles: %v", err)
		return profiles
	}
	for _, user := range users {
		profiles[user.ID] = user.Profile()
	}
	return profiles
}

func ListComments(c *gin.Context) {
	concertID := c.Param("id")

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := gormDB.Where("concert_id = ?", concertID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving comments.")
		return
	}

	thread := aggregate.DecorateThread(comments, loadProfiles(gormDB, comments))

	c.JSON(http.StatusOK, gin.H{"comments": thread})
}

func CreateComment(c *gin.Context) {
	concertIDStr := c.Param("id")
	concertID, err := uuid.Parse(concertIDStr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid concert ID.")
		return
	}

	userID := currentUserID(c)
	if userID == uuid.Nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Please sign in to leave a comment.")
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Comment cannot be empty.")
		return
	}

	// Validation runs before any store access.
	content, err := aggregate.ValidateComment(req.Content)
	if err != nil {
		if errors.Is(err, aggregate.ErrContentTooLong) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Comment is too long (max 1000 characters).")
			return
		}
		helpers.RespondWithError(c, http.StatusBadRequest, "Comment cannot be empty.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var concert models.Concert
	if err := gormDB.Where("id = ?", concertID).First(&concert).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Concert not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving concert.")
		return
	}

	// The author is the viewer, so their own profile needs no extra trip
	// beyond this user load.
	var author models.User
	if err := gormDB.Where("id = ?", userID).First(&author).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not found.")
		return
	}

	comment := models.Comment{
		ConcertID: concertID,
		UserID:    userID,
		Content:   content,
	}

	if err := gormDB.Create(&comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to add comment.")
		return
	}

	middleware.GetNotifier(c).Send(notify.Event{
		Type:           notify.EventNewComment,
		UserName:       author.DisplayName,
		ConcertName:    concert.Name,
		CommentContent: content,
	})

	if hub := middleware.GetHub(c); hub != nil {
		hub.NotifyChanged("comments")
	}

	c.JSON(http.StatusCreated, aggregate.ThreadComment{
		Comment: comment,
		Author:  author.Profile(),
	})
}

// DeleteComment removes a comment the acting user authored. The delete is
// scoped to (comment id, author id), so deleting someone else's comment
// affects zero rows — which is reported as success, the same as deleting
// an already-gone comment.
func DeleteComment(c *gin.Context) {
	commentID := c.Param("id")

	userID := currentUserID(c)
	if userID == uuid.Nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	result := gormDB.Where("id = ? AND user_id = ?", commentID, userID).Delete(&models.Comment{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete comment.")
		return
	}

	if result.RowsAffected > 0 {
		if hub := middleware.GetHub(c); hub != nil {
			hub.NotifyChanged("comments")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted."})
}
