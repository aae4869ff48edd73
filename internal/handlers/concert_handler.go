package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/showgoers/showgoers/internal/aggregate"
	"github.com/showgoers/showgoers/internal/helpers"
	"github.com/showgoers/showgoers/internal/middleware"
	"github.com/showgoers/showgoers/internal/models"
)

// ConcertView is a concert as the list and detail endpoints render it,
// carrying the derived counts every card needs.
type ConcertView struct {
	models.Concert
	InterestedCount  int   `json:"interested_count"`
	CommentCount     int64 `json:"comment_count"`
	ViewerInterested bool  `json:"viewer_interested"`
}

func currentUserID(c *gin.Context) uuid.UUID {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func getDB(c *gin.Context) (*gorm.DB, bool) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return nil, false
	}
	return db.(*gorm.DB), true
}

// loadCommentCounts aggregates the whole comment table in one grouped
// query; the list view never issues a per-concert count.
func loadCommentCounts(db *gorm.DB) aggregate.CommentCounts {
	var rows []struct {
		ConcertID uuid.UUID
		Count     int64
	}
	counts := make(aggregate.CommentCounts)
	err := db.Model(&models.Comment{}).
		Select("concert_id, count(*) as count").
		Group("concert_id").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Error counting comments: %v", err)
		return counts
	}
	for _, row := range rows {
		counts[row.ConcertID] = row.Count
	}
	return counts
}

// loadInterestIndex loads the full interest set. A failed read degrades to
// zero counts instead of failing the view.
func loadInterestIndex(db *gorm.DB) *aggregate.InterestIndex {
	var interests []models.Interest
	if err := db.Find(&interests).Error; err != nil {
		log.Printf("Error fetching interests: %v", err)
		interests = nil
	}
	return aggregate.NewInterestIndex(interests)
}

func buildViews(concerts []models.Concert, ix *aggregate.InterestIndex, counts aggregate.CommentCounts, viewerID uuid.UUID) []ConcertView {
	views := make([]ConcertView, 0, len(concerts))
	for _, concert := range concerts {
		views = append(views, ConcertView{
			Concert:          concert,
			InterestedCount:  ix.CountFor(concert.ID),
			CommentCount:     counts.CountFor(concert.ID),
			ViewerInterested: ix.IsInterested(concert.ID, viewerID),
		})
	}
	return views
}

func ListConcerts(c *gin.Context) {
	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var concerts []models.Concert
	if err := gormDB.Order("date ASC").Find(&concerts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving concerts.")
		return
	}

	ix := loadInterestIndex(gormDB)
	counts := loadCommentCounts(gormDB)
	viewerID := currentUserID(c)

	upcoming, past := aggregate.PartitionConcerts(concerts, time.Now())

	c.JSON(http.StatusOK, gin.H{
		"upcoming": buildViews(upcoming, ix, counts, viewerID),
		"past":     buildViews(past, ix, counts, viewerID),
	})
}

func GetConcert(c *gin.Context) {
	concertID := c.Param("id")

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

	ix := loadInterestIndex(gormDB)
	counts := loadCommentCounts(gormDB)

	c.JSON(http.StatusOK, ConcertView{
		Concert:          concert,
		InterestedCount:  ix.CountFor(concert.ID),
		CommentCount:     counts.CountFor(concert.ID),
		ViewerInterested: ix.IsInterested(concert.ID, currentUserID(c)),
	})
}

// removeStoredImage deletes a previously uploaded image. Only paths under
// the upload directory are touched; external image URLs are left alone.
func removeStoredImage(path string) {
	if !strings.HasPrefix(path, "uploads") {
		return
	}
	if err := helpers.DeleteFile(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing image %s: %v", path, err)
	}
}

func optionalField(c *gin.Context, name string) *string {
	value := c.PostForm(name)
	if value == "" {
		return nil
	}
	return &value
}

func bindConcertForm(c *gin.Context, concert *models.Concert) bool {
	name := c.PostForm("name")
	venue := c.PostForm("venue")
	date := c.PostForm("date")

	if name == "" || venue == "" || date == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return false
	}
	if _, err := time.Parse(aggregate.DateLayout, date); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
		return false
	}

	status := c.PostForm("ticket_status")
	if status == "" {
		status = models.TicketStatusPending
	}
	if !models.ValidTicketStatus(status) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket status.")
		return false
	}

	concert.Name = name
	concert.Venue = venue
	concert.Date = date
	concert.TicketStatus = status
	concert.Description = optionalField(c, "description")
	concert.Review = optionalField(c, "review")
	concert.TicketURL = optionalField(c, "ticket_url")
	concert.SpotifyURL = optionalField(c, "spotify_url")
	if imageURL := optionalField(c, "image_url"); imageURL != nil {
		concert.ImageURL = imageURL
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "concert_images")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return false
		}
		concert.ImageURL = &imagePath
	}

	return true
}

func CreateConcert(c *gin.Context) {
	gormDB, ok := getDB(c)
	if !ok {
		return
	}

	var concert models.Concert
	if !bindConcertForm(c, &concert) {
		return
	}

	if userID := currentUserID(c); userID != uuid.Nil {
		concert.CreatedByID = &userID
	}

	if err := gormDB.Create(&concert).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create concert.")
		return
	}

	if hub := middleware.GetHub(c); hub != nil {
		hub.NotifyChanged("concerts")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Concert created successfully.",
		"concert_id": concert.ID,
	})
}

func UpdateConcert(c *gin.Context) {
	concertID := c.Param("id")

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
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding concert.")
		return
	}

	oldImage := concert.ImageURL
	if !bindConcertForm(c, &concert) {
		return
	}

	if err := gormDB.Save(&concert).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update concert.")
		return
	}

	if oldImage != nil && (concert.ImageURL == nil || *concert.ImageURL != *oldImage) {
		removeStoredImage(*oldImage)
	}

	if hub := middleware.GetHub(c); hub != nil {
		hub.NotifyChanged("concerts")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Concert updated successfully.",
		"concert": concert,
	})
}

func DeleteConcert(c *gin.Context) {
	concertID := c.Param("id")

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
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding concert.")
		return
	}

	if err := gormDB.Delete(&concert).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete concert.")
		return
	}

	if concert.ImageURL != nil {
		removeStoredImage(*concert.ImageURL)
	}

	if hub := middleware.GetHub(c); hub != nil {
		hub.NotifyChanged("concerts")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Concert deleted successfully.",
	})
}
