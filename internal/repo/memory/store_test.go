package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string) user.User {
	t.Helper()
	u, err := s.Users().CreateAccount(context.Background(), user.NewAccount{
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "a@example.com")

	_, err := s.Users().CreateAccount(context.Background(), user.NewAccount{Email: "a@example.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestCreateAccountDedupesInterests(t *testing.T) {
	s := NewStore()
	u, err := s.Users().CreateAccount(context.Background(), user.NewAccount{
		Email: "a@example.com",
		Interests: []category.Category{
			category.Category("technology_and_digital_literacy"),
			category.Category("animal_welfare"),
			category.Category("animal_welfare"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []category.Category{"animal_welfare", "technology_and_digital_literacy"}, u.Interests)
}

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	member := seedUser(t, s, "member@example.com")

	org, err := s.Organizations().CreateWithAdmin(ctx, organization.Organization{Name: "Shelter", CreatedByUserID: owner.ID})
	require.NoError(t, err)
	require.NoError(t, s.Roles().AddRole(ctx, role.Role{UserID: member.ID, OrganizationID: org.ID, PermissionLevel: role.Volunteer}))

	ev, err := s.Events().Create(ctx, event.Event{Name: "Walk", OrganizationID: org.ID, DateTime: time.Now()})
	require.NoError(t, err)
	_, err = s.Registrations().Create(ctx, registration.New(member.ID, ev.ID, org.ID))
	require.NoError(t, err)

	require.NoError(t, s.Users().DeleteAccount(ctx, member.ID))

	_, err = s.Users().GetByID(ctx, member.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = s.Users().GetCredential(ctx, member.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = s.Roles().GetRole(ctx, member.ID, org.ID)
	assert.ErrorIs(t, err, role.ErrNotFound)

	regs, err := s.Registrations().List(ctx, registration.ListFilter{UserID: member.ID})
	require.NoError(t, err)
	assert.Empty(t, regs)

	// the email is free again
	seedUser(t, s, "member@example.com")
}

func TestDeleteOrganizationCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")

	org, err := s.Organizations().CreateWithAdmin(ctx, organization.Organization{Name: "Shelter", CreatedByUserID: owner.ID})
	require.NoError(t, err)

	ev, err := s.Events().Create(ctx, event.Event{Name: "Walk", OrganizationID: org.ID, DateTime: time.Now()})
	require.NoError(t, err)
	_, err = s.Registrations().Create(ctx, registration.New(owner.ID, ev.ID, org.ID))
	require.NoError(t, err)

	require.NoError(t, s.Organizations().Delete(ctx, org.ID))

	_, err = s.Events().GetByID(ctx, ev.ID)
	assert.ErrorIs(t, err, event.ErrNotFound)
	roles, err := s.Roles().ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, roles)
	regs, err := s.Registrations().List(ctx, registration.ListFilter{UserID: owner.ID})
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestAddRoleErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")

	org, err := s.Organizations().CreateWithAdmin(ctx, organization.Organization{Name: "Shelter", CreatedByUserID: owner.ID})
	require.NoError(t, err)

	err = s.Roles().AddRole(ctx, role.Role{UserID: owner.ID, OrganizationID: org.ID, PermissionLevel: role.Volunteer})
	assert.ErrorIs(t, err, role.ErrAlreadyMember)

	err = s.Roles().AddRole(ctx, role.Role{UserID: 999, OrganizationID: org.ID, PermissionLevel: role.Volunteer})
	assert.ErrorIs(t, err, user.ErrNotFound)

	err = s.Roles().AddRole(ctx, role.Role{UserID: owner.ID, OrganizationID: 999, PermissionLevel: role.Volunteer})
	assert.ErrorIs(t, err, organization.ErrNotFound)
}

func TestListUsersFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	grace, err := s.Users().CreateAccount(ctx, user.NewAccount{Email: "grace@navy.mil", FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	grace.Availability = user.AvailabilityWeekends
	_, err = s.Users().UpdateProfile(ctx, grace)
	require.NoError(t, err)

	_, err = s.Users().CreateAccount(ctx, user.NewAccount{Email: "alan@example.com", FirstName: "Alan", LastName: "Turing"})
	require.NoError(t, err)

	ids := func(us []user.User) []int64 {
		out := make([]int64, 0, len(us))
		for _, u := range us {
			out = append(out, u.ID)
		}
		return out
	}

	q := func(v string) *string { return &v }

	tests := []struct {
		name   string
		filter user.ListFilter
		want   int
	}{
		{"no filter", user.ListFilter{}, 2},
		{"email match", user.ListFilter{Query: q("NAVY")}, 1},
		{"last name match", user.ListFilter{Query: q("turing")}, 1},
		{"no match", user.ListFilter{Query: q("lovelace")}, 0},
		{"availability", user.ListFilter{Availability: q(user.AvailabilityWeekends)}, 1},
		{"query and availability", user.ListFilter{Query: q("alan"), Availability: q(user.AvailabilityWeekends)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Users().List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	all, err := s.Users().List(ctx, user.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(all))
}

func TestListAndGetRegistrations(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")

	shelter, err := s.Organizations().CreateWithAdmin(ctx, organization.Organization{Name: "Shelter", CreatedByUserID: owner.ID})
	require.NoError(t, err)
	pantry, err := s.Organizations().CreateWithAdmin(ctx, organization.Organization{Name: "Pantry", CreatedByUserID: owner.ID})
	require.NoError(t, err)

	at := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	walk, err := s.Events().Create(ctx, event.Event{Name: "Walk", Location: "Park", OrganizationID: shelter.ID, DateTime: at})
	require.NoError(t, err)
	depot, err := s.Events().Create(ctx, event.Event{Name: "Sort", Location: "Depot", OrganizationID: pantry.ID, DateTime: at})
	require.NoError(t, err)

	for _, ev := range []event.Event{walk, depot} {
		_, err = s.Registrations().Create(ctx, registration.New(owner.ID, ev.ID, ev.OrganizationID))
		require.NoError(t, err)
	}
	_, err = s.Registrations().Create(ctx, registration.New(other.ID, walk.ID, shelter.ID))
	require.NoError(t, err)

	mine, err := s.Registrations().List(ctx, registration.ListFilter{UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Nil(t, mine[0].Event)

	byOrg, err := s.Registrations().List(ctx, registration.ListFilter{UserID: owner.ID, OrganizationID: &pantry.ID})
	require.NoError(t, err)
	require.Len(t, byOrg, 1)
	assert.Equal(t, depot.ID, byOrg[0].EventID)

	detailed, err := s.Registrations().List(ctx, registration.ListFilter{UserID: owner.ID, EventID: &walk.ID, IncludeEventDetails: true})
	require.NoError(t, err)
	require.Len(t, detailed, 1)
	require.NotNil(t, detailed[0].Event)
	assert.Equal(t, "Walk", detailed[0].Event.Name)
	assert.Equal(t, "Park", detailed[0].Event.Location)

	reg, err := s.Registrations().Get(ctx, shelter.ID, walk.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, reg.UserID)

	_, err = s.Registrations().Get(ctx, pantry.ID, walk.ID, other.ID)
	assert.ErrorIs(t, err, registration.ErrNotFound)
}
