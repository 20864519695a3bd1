package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/splitmate-api/internal/constants"
	"github.com/yukikurage/splitmate-api/internal/database"
	apierrors "github.com/yukikurage/splitmate-api/internal/errors"
	"github.com/yukikurage/splitmate-api/internal/middleware"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"github.com/yukikurage/splitmate-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db                *gorm.DB
	store             repository.Store
	authService       *services.AuthService
	eventService      *services.EventService
	membershipService *services.MembershipService
	itemService       *services.ItemService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPlans(db))

	store := repository.NewStore(db)
	gate := services.NewStaticFeatureGate([]string{constants.MailActionInvite, constants.MailActionReminder}, nil)
	notifier := services.LogNotifier{}

	return handlerTestEnv{
		db:                db,
		store:             store,
		authService:       services.NewAuthService(store, gate),
		eventService:      services.NewEventService(store, notifier, gate, nil),
		membershipService: services.NewMembershipService(store, notifier, gate),
		itemService:       services.NewItemService(store),
	}
}

// router mounts the event routes with the caller already authenticated as userID
func (env handlerTestEnv) router(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set(constants.ContextKeyUserID, userID)
		}
		c.Next()
	})

	eventHandler := NewEventHandler(env.eventService)
	membershipHandler := NewMembershipHandler(env.membershipService, env.eventService)
	itemHandler := NewItemHandler(env.itemService, env.eventService)

	r.DELETE("/api/auth/me", membershipHandler.DeleteAccount)

	events := r.Group("/api/events")
	events.POST("", eventHandler.CreateEvent)
	events.GET("", eventHandler.ListEvents)

	event := events.Group("/:id", middleware.RequireEventID())
	event.GET("", eventHandler.GetEvent)
	event.PATCH("", eventHandler.UpdateEvent)
	event.DELETE("", eventHandler.DeleteEvent)
	event.POST("/reminder", eventHandler.SendReminder)
	event.GET("/suggestions", eventHandler.SuggestItems)
	event.POST("/invite", membershipHandler.Invite)
	event.POST("/join", membershipHandler.Join)
	event.POST("/dismiss", membershipHandler.Dismiss)
	event.POST("/leave", membershipHandler.Leave)
	event.POST("/transfer/:user_id", membershipHandler.TransferOrganizer)
	event.DELETE("/members/:user_id", membershipHandler.RemoveMember)
	event.POST("/archive/:action", membershipHandler.Archive)
	event.PATCH("/items", itemHandler.ApplyAction)
	event.GET("/items/:item_id", eventHandler.GetItem)
	event.PATCH("/items/:item_id/poll/:option_id", itemHandler.VotePoll)

	return r
}

func (env handlerTestEnv) createUser(t *testing.T, username string, planName models.PlanName) *models.User {
	t.Helper()
	plan, err := env.store.Plans().FindByName(planName)
	require.NoError(t, err)

	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		PlanID:       plan.ID,
	}
	require.NoError(t, env.store.Users().Create(user))
	return user
}

func (env handlerTestEnv) createEvent(t *testing.T, organizer *models.User, itemNames ...string) *models.Event {
	t.Helper()
	input := services.CreateEventInput{Name: "Picnic"}
	for _, name := range itemNames {
		n := name
		input.Items = append(input.Items, services.ItemInput{Name: &n})
	}
	event, err := env.eventService.CreateEvent(organizer.ID, input)
	require.NoError(t, err)
	return event
}

func (env handlerTestEnv) invite(t *testing.T, inviter *models.User, event *models.Event, target string) {
	t.Helper()
	_, err := env.membershipService.Invite(context.Background(), inviter.ID, event.ID, target)
	require.NoError(t, err)
}

func doJSON(t *testing.T, r http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}
