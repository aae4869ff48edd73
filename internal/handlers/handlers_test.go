package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/showgoers/showgoers/internal/middleware"
	"github.com/showgoers/showgoers/internal/models"
	"github.com/showgoers/showgoers/internal/notify"
	"github.com/showgoers/showgoers/internal/ws"
)

const testJWTSecret = "test-secret"

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Role{}, &models.User{}, &models.Concert{}, &models.Interest{}, &models.Comment{})
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	for _, name := range []string{models.RoleMember, models.RoleAdmin} {
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			t.Fatalf("seed role %s: %v", name, err)
		}
	}

	hub := ws.NewHub()
	go hub.Run()

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.NotifierMiddleware(notify.Nop{}))
	r.Use(middleware.HubMiddleware(hub))

	public := r.Group("/v1")
	public.POST("/register", Register)
	public.POST("/login", Login)
	concertPublic := public.Group("/concerts")
	concertPublic.Use(middleware.OptionalAuthMiddleware())
	{
		concertPublic.GET("", ListConcerts)
		concertPublic.GET("/:id", GetConcert)
		concertPublic.GET("/:id/comments", ListComments)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", GetProfile)
		protected.POST("/concerts/:id/interest", ToggleInterest)
		protected.POST("/concerts/:id/comments", CreateComment)
		protected.DELETE("/comments/:id", DeleteComment)

		admin := protected.Group("")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("/concerts", CreateConcert)
			admin.PUT("/concerts/:id", UpdateConcert)
			admin.DELETE("/concerts/:id", DeleteConcert)
			admin.GET("/concerts/:id/interests", ListInterests)
		}
	}

	return r, db
}

func createTestUser(t *testing.T, db *gorm.DB, email, displayName string) models.User {
	t.Helper()
	var role models.Role
	if err := db.Where("name = ?", models.RoleMember).First(&role).Error; err != nil {
		t.Fatalf("load member role: %v", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
		RoleID:      role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func createTestConcert(t *testing.T, db *gorm.DB, name, date string) models.Concert {
	t.Helper()
	concert := models.Concert{Name: name, Venue: "Test Hall", Date: date}
	if err := db.Create(&concert).Error; err != nil {
		t.Fatalf("create concert %s: %v", name, err)
	}
	return concert
}

func signedTokenFor(t *testing.T, user models.User, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func tokenFor(t *testing.T, user models.User) string {
	return signedTokenFor(t, user, models.RoleMember)
}

func adminTokenFor(t *testing.T, user models.User) string {
	return signedTokenFor(t, user, models.RoleAdmin)
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
