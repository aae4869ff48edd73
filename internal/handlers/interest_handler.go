package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showgoers/showgoers/internal/helpers"
	"github.com/showgoers/showgoers/internal/middleware"
	"github.com/showgoers/showgoers/internal/models"
	"github.com/showgoers/showgoers/internal/notify"
)

// ToggleInterest flips the acting user's interest mark on a concert. Two
// consecutive calls return the mark to its original state. There is no
// concurrency token: racing toggles resolve last-write-wins and clients
// reconcile off the change feed.
func ToggleInterest(c *gin.Context) {
	concertIDStr := c.Param("id")
	concertID, err := uuid.Parse(concertIDStr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid concert ID.")
		return
	}

	userID := currentUserID(c)
	if userID == uuid.Nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Please sign in to mark your interest.")
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

	var existing models.Interest
	findErr := gormDB.Where("concert_id = ? AND user_id = ?", concertID, userID).First(&existing).Error

	interested := false
	switch {
	case findErr == nil:
		if err := gormDB.Delete(&existing).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update interest.")
			return
		}
	case findErr == gorm.ErrRecordNotFound:
		mark := models.Interest{ConcertID: concertID, UserID: userID}
		if err := gormDB.Create(&mark).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to mark interest.")
			return
		}
		interested = true

		// Creation is the only event worth announcing; removal stays quiet.
		var user models.User
		if err := gormDB.Where("id = ?", userID).First(&user).Error; err == nil {
			middleware.GetNotifier(c).Send(notify.Event{
				Type:        notify.EventNewInterest,
				UserName:    user.DisplayName,
				ConcertName: concert.Name,
			})
		}
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error checking interest.")
		return
	}

	if hub := middleware.GetHub(c); hub != nil {
		hub.NotifyChanged("interests")
	}

	var count int64
	gormDB.Model(&models.Interest{}).Where("concert_id = ?", concertID).Count(&count)

	c.JSON(http.StatusOK, gin.H{
		"interested":       interested,
		"interested_count": count,
	})
}

// ListInterests shows admins who is interested in a concert, decorated
// with profiles.
func ListInterests(c *gin.Context) {
	concertID := c.Param("id")

	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var interests []models.Interest
	if err := gormDB.Preload("User").Where("concert_id = ?", concertID).
		Order("created_at ASC").Find(&interests).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving interests.")
		return
	}

	type interestView struct {
		models.Interest
		Profile models.Profile `json:"profile"`
	}

	views := make([]interestView, 0, len(interests))
	for _, interest := range interests {
		view := interestView{Interest: interest}
		if interest.User != nil {
			view.Profile = interest.User.Profile()
		} else {
			view.Profile = models.Profile{UserID: interest.UserID, DisplayName: "Unknown"}
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"interests": views})
}
