package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/splitmate-api/internal/database"
	"github.com/yukikurage/splitmate-api/internal/models"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	Email     string
	EventName string
	Items     []string
}

type fakeNotifier struct {
	mu        sync.Mutex
	invites   []sentMail
	reminders []sentMail
	err       error
}

func (n *fakeNotifier) SendInvite(_ context.Context, email, eventName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invites = append(n.invites, sentMail{Email: email, EventName: eventName})
	return n.err
}

func (n *fakeNotifier) SendReminder(_ context.Context, email, eventName string, items []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, sentMail{Email: email, EventName: eventName, Items: items})
	return n.err
}

type fakeGate struct {
	mail   bool
	signUp bool
}

func (g *fakeGate) SendMailEnabled(context.Context, string) bool { return g.mail }
func (g *fakeGate) SignUpEnabled(context.Context, string) bool   { return g.signUp }

type fakeSuggester struct {
	names []string
	err   error
}

func (s *fakeSuggester) SuggestItems(context.Context, *models.Event) ([]string, error) {
	return s.names, s.err
}

type serviceTestEnv struct {
	db         *gorm.DB
	store      repository.Store
	notifier   *fakeNotifier
	gate       *fakeGate
	suggester  *fakeSuggester
	auth       *AuthService
	events     *EventService
	membership *MembershipService
	items      *ItemService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPlans(db))

	store := repository.NewStore(db)
	notifier := &fakeNotifier{}
	gate := &fakeGate{mail: true, signUp: true}
	suggester := &fakeSuggester{}

	return serviceTestEnv{
		db:         db,
		store:      store,
		notifier:   notifier,
		gate:       gate,
		suggester:  suggester,
		auth:       NewAuthService(store, gate),
		events:     NewEventService(store, notifier, gate, suggester),
		membership: NewMembershipService(store, notifier, gate),
		items:      NewItemService(store),
	}
}

func (env serviceTestEnv) planNamed(t *testing.T, name models.PlanName) *models.Plan {
	t.Helper()
	plan, err := env.store.Plans().FindByName(name)
	require.NoError(t, err)
	return plan
}

// customPlan stores an unlimited plan after applying mutate to it
func (env serviceTestEnv) customPlan(t *testing.T, mutate func(p *models.Plan)) *models.Plan {
	t.Helper()
	plan := models.DefaultFounderPlan()
	plan.Name = models.PlanName("TEST_" + uuid.NewString()[:8])
	mutate(&plan)
	require.NoError(t, env.store.Plans().Create(&plan))
	return &plan
}

func (env serviceTestEnv) createUser(t *testing.T, username string, plan *models.Plan) *models.User {
	t.Helper()
	user := &models.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		PlanID:       plan.ID,
	}
	require.NoError(t, env.store.Users().Create(user))
	return env.reloadUser(t, user.ID)
}

func (env serviceTestEnv) founder(t *testing.T, username string) *models.User {
	t.Helper()
	return env.createUser(t, username, env.planNamed(t, models.PlanFounder))
}

func (env serviceTestEnv) reloadUser(t *testing.T, id uint64) *models.User {
	t.Helper()
	user, err := env.store.Users().FindByID(id)
	require.NoError(t, err)
	return user
}

func (env serviceTestEnv) reloadEvent(t *testing.T, id uint64) *models.Event {
	t.Helper()
	event, err := env.store.Events().FindByID(id)
	require.NoError(t, err)
	return event
}

func (env serviceTestEnv) createEvent(t *testing.T, organizer *models.User, itemNames ...string) *models.Event {
	t.Helper()
	input := CreateEventInput{Name: "Picnic", Description: "Sunday in the park"}
	for _, name := range itemNames {
		n := name
		input.Items = append(input.Items, ItemInput{Name: &n})
	}
	event, err := env.events.CreateEvent(organizer.ID, input)
	require.NoError(t, err)
	return event
}

// addMember puts user straight into the event through the join flow
func (env serviceTestEnv) addMember(t *testing.T, event *models.Event, user *models.User) {
	t.Helper()
	_, err := env.membership.Join(user.ID, event.ID)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
