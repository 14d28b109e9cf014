package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/testutil"
)

func newUser(t *testing.T, users *repository.UserRepo, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x", Role: model.RoleUser, Provider: model.ProviderLocal}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	u := newUser(t, users, "a@example.com")
	require.NotNil(t, u.Profile)
	assert.Equal(t, u.ID, u.Profile.UserID)

	err := users.Create(ctx, &model.User{Email: "a@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestUserRepoGetByGoogleIDOrEmail(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	byEmail := newUser(t, users, "mail@example.com")
	gid := "g-1"
	linked := &model.User{Email: "linked@example.com", PasswordHash: "x", GoogleID: &gid}
	require.NoError(t, users.Create(ctx, linked))

	got, err := users.GetByGoogleIDOrEmail(ctx, "g-1", "mail@example.com")
	require.NoError(t, err)
	assert.Equal(t, linked.ID, got.ID)

	got, err = users.GetByGoogleIDOrEmail(ctx, "g-2", "mail@example.com")
	require.NoError(t, err)
	assert.Equal(t, byEmail.ID, got.ID)

	_, err = users.GetByGoogleIDOrEmail(ctx, "g-3", "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenRepoStoreAccessOverwrites(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	ctx := context.Background()
	u := newUser(t, users, "t@example.com")
	now := time.Now().UTC()

	require.NoError(t, tokens.StoreAccess(ctx, u.ID, "first", now.Add(time.Hour)))
	require.NoError(t, tokens.StoreAccess(ctx, u.ID, "second", now.Add(time.Hour)))

	var n int64
	require.NoError(t, db.Model(&model.Token{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	ok, err := tokens.ActiveAccess(ctx, u.ID, "first", now)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tokens.ActiveAccess(ctx, u.ID, "second", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tokens.ActiveAccess(ctx, u.ID, "second", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "expired record")

	require.NoError(t, tokens.DeleteAccess(ctx, u.ID))
	ok, err = tokens.ActiveAccess(ctx, u.ID, "second", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenRepoOAuthRowIsSeparateFromAccess(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	ctx := context.Background()
	u := newUser(t, users, "o@example.com")

	require.NoError(t, tokens.StoreAccess(ctx, u.ID, "session", time.Now().Add(time.Hour)))
	for _, v := range []string{"g1", "g2"} {
		require.NoError(t, tokens.Upsert(ctx, &model.Token{UserID: u.ID, Kind: model.TokenKindOAuth, Provider: "google", Token: v}))
	}

	got, err := tokens.Get(ctx, u.ID, model.TokenKindOAuth, "google")
	require.NoError(t, err)
	assert.Equal(t, "g2", got.Token)

	var n int64
	require.NoError(t, db.Model(&model.Token{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestEventRepoListPaginationAndFilters(t *testing.T) {
	db := testutil.NewDB(t)
	events := repository.NewEventRepo(db)
	ctx := context.Background()
	base := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		city := "Berlin"
		if i%5 == 0 {
			city = "Munich"
		}
		require.NoError(t, events.Create(ctx, &model.Event{
			Name:                  fmt.Sprintf("Race %02d", i),
			EventType:             "running",
			Status:                model.EventUpcoming,
			City:                  city,
			EventDate:             base.AddDate(0, 0, i),
			RegistrationStartDate: base.AddDate(0, -1, 0),
			RegistrationEndDate:   base.AddDate(0, 0, -1),
			Currency:              "USD",
		}))
	}

	page3, total, err := events.List(ctx, repository.EventFilter{}, repository.Page{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, page3, 5)
	assert.Equal(t, "Race 20", page3[0].Name)
	assert.Equal(t, 3, repository.NewPagination(total, repository.Page{Page: 3, Limit: 10}).Pages)

	munich, total, err := events.List(ctx, repository.EventFilter{City: "mun"}, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, munich, 5)

	found, total, err := events.List(ctx, repository.EventFilter{Search: "RACE 1"}, repository.Page{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
	assert.Len(t, found, 10)
}

func TestEventRepoDeleteCascadesAndMissing(t *testing.T) {
	db := testutil.NewDB(t)
	events := repository.NewEventRepo(db)
	users := repository.NewUserRepo(db)
	participants := repository.NewParticipantRepo(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ev := &model.Event{Name: "Marathon", EventType: "running", EventDate: now.AddDate(0, 1, 0), RegistrationStartDate: now, RegistrationEndDate: now.AddDate(0, 0, 20)}
	require.NoError(t, events.Create(ctx, ev))
	cat := &model.EventCategory{EventID: ev.ID, Name: "42k", Distance: 42.2}
	require.NoError(t, events.CreateCategory(ctx, cat))
	u := newUser(t, users, "p@example.com")
	require.NoError(t, participants.Create(ctx, &model.Participant{UserID: u.ID, EventID: ev.ID, CategoryID: cat.ID, RegistrationDate: now}))

	require.NoError(t, events.Delete(ctx, ev.ID))
	_, err := events.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, total, err := participants.List(ctx, repository.ParticipantFilter{}, repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, events.Delete(ctx, ev.ID), repository.ErrNotFound)
	assert.ErrorIs(t, events.DeleteCategory(ctx, 999), repository.ErrNotFound)
}

func TestParticipantRepoDuplicateAndSearch(t *testing.T) {
	db := testutil.NewDB(t)
	events := repository.NewEventRepo(db)
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	participants := repository.NewParticipantRepo(db)
	ctx := context.Background()

	now := time.Now().UTC()
	ev := &model.Event{Name: "Trail", EventType: "trail", EventDate: now.AddDate(0, 1, 0), RegistrationStartDate: now, RegistrationEndDate: now.AddDate(0, 0, 20)}
	require.NoError(t, events.Create(ctx, ev))
	cat := &model.EventCategory{EventID: ev.ID, Name: "21k", Distance: 21}
	require.NoError(t, events.CreateCategory(ctx, cat))

	alice := newUser(t, users, "alice@example.com")
	bob := newUser(t, users, "bob@example.com")
	_, err := profiles.Update(ctx, bob.ID, map[string]any{"last_name": "Marley"})
	require.NoError(t, err)

	require.NoError(t, participants.Create(ctx, &model.Participant{UserID: alice.ID, EventID: ev.ID, CategoryID: cat.ID, BibNumber: "A-17", RegistrationDate: now}))
	require.NoError(t, participants.Create(ctx, &model.Participant{UserID: bob.ID, EventID: ev.ID, CategoryID: cat.ID, RegistrationDate: now.Add(time.Minute)}))

	err = participants.Create(ctx, &model.Participant{UserID: alice.ID, EventID: ev.ID, CategoryID: cat.ID, RegistrationDate: now})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := participants.Exists(ctx, alice.ID, ev.ID, cat.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	for search, want := range map[string]uint64{"ALICE@": alice.ID, "marl": bob.ID, "A-17": alice.ID} {
		got, total, err := participants.List(ctx, repository.ParticipantFilter{Search: search}, repository.Page{})
		require.NoError(t, err)
		require.EqualValues(t, 1, total, search)
		assert.Equal(t, want, got[0].UserID, search)
		require.NotNil(t, got[0].User)
		require.NotNil(t, got[0].Event)
		require.NotNil(t, got[0].Category)
	}

	all, _, err := participants.List(ctx, repository.ParticipantFilter{EventID: ev.ID}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, bob.ID, all[0].UserID, "newest registration first")

	_, err = participants.GetForUser(ctx, all[0].ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, participants.Delete(ctx, 12345), repository.ErrNotFound)
}

func TestAddressRepoSinglePrimary(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	addresses := repository.NewAddressRepo(db)
	ctx := context.Background()
	u := newUser(t, users, "addr@example.com")
	other := newUser(t, users, "other@example.com")

	a := &model.Address{UserID: u.ID, City: "Oslo", IsPrimary: true}
	b := &model.Address{UserID: u.ID, City: "Bergen"}
	o := &model.Address{UserID: other.ID, City: "Paris", IsPrimary: true}
	for _, addr := range []*model.Address{a, b, o} {
		require.NoError(t, addresses.Create(ctx, addr))
	}

	got, changed, err := addresses.SetPrimary(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, got.IsPrimary)

	n, err := addresses.CountPrimary(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, total, err := addresses.List(ctx, u.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, b.ID, list[0].ID)

	_, changed, err = addresses.SetPrimary(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = addresses.Update(ctx, u.ID, a.ID, map[string]any{"is_primary": true})
	require.NoError(t, err)
	n, err = addresses.CountPrimary(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = addresses.CountPrimary(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "other users are untouched")

	_, _, err = addresses.SetPrimary(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, addresses.Delete(ctx, other.ID, a.ID), repository.ErrNotFound)
}

func TestProfileRepoFillEmptyKeepsExisting(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	ctx := context.Background()
	u := newUser(t, users, "pr@example.com")

	_, err := profiles.Update(ctx, u.ID, map[string]any{"first_name": "Ada"})
	require.NoError(t, err)

	p, err := profiles.FillEmpty(ctx, u.ID, model.Profile{FirstName: "Google", LastName: "Lovelace", Picture: "https://img.example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
	assert.Equal(t, "Lovelace", p.LastName)
	assert.Equal(t, "https://img.example.com/a.png", p.Picture)
}
