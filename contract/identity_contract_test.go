package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedevup/Green-energy-transactions-hyperledger-fabric/model"
)

func TestCreateParticipantRequiresAdmin(t *testing.T) {
	for _, role := range model.Roles {
		t.Run(string(role), func(t *testing.T) {
			l := newTestLedger(t)
			ic := new(IdentityContract)

			_, err := ic.CreateParticipant(l.as(participantIdentity("mallory", model.RoleProducer)), "alice", "Alice", string(role))
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.Nil(t, l.rawState("Participant:alice"))

			created, err := ic.CreateParticipant(l.as(adminIdentity()), "alice", "Alice", string(role))
			require.NoError(t, err)
			assert.Equal(t, role, created.Role)

			got, err := ic.GetParticipant(l.as(adminIdentity()), "alice")
			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	}
}

func TestCreateParticipantAdminByCommonName(t *testing.T) {
	l := newTestLedger(t)
	_, err := new(IdentityContract).CreateParticipant(l.as(&fakeIdentity{cn: "admin"}), "alice", "Alice", "PRODUCER")
	require.NoError(t, err)

	// A CN that merely contains "admin" is not enough.
	_, err = new(IdentityContract).CreateParticipant(l.as(&fakeIdentity{cn: "admin2"}), "bob", "Bob", "CUSTOMER")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateParticipantAdminAttributeMustBeTrue(t *testing.T) {
	l := newTestLedger(t)
	caller := &fakeIdentity{cn: "ops", attrs: map[string]string{"admin": "false"}}
	_, err := new(IdentityContract).CreateParticipant(l.as(caller), "alice", "Alice", "PRODUCER")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateParticipantInvalidRole(t *testing.T) {
	l := newTestLedger(t)
	ic := new(IdentityContract)
	for _, role := range []string{"", "admin", "producer", "SELLER", "PRODUCER,CUSTOMER"} {
		_, err := ic.CreateParticipant(l.as(adminIdentity()), "alice", "Alice", role)
		require.ErrorIs(t, err, ErrInvalidArgument, "role %q", role)
	}
	assert.Empty(t, l.stub.State)
}

func TestCreateParticipantDuplicate(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreateParticipant("alice", model.RoleProducer)

	_, err := new(IdentityContract).CreateParticipant(l.as(adminIdentity()), "alice", "Other Alice", "CUSTOMER")
	require.ErrorIs(t, err, ErrAlreadyExists)

	p, err := NewIdentityManager(l.as(adminIdentity())).GetParticipant("alice")
	require.NoError(t, err)
	assert.Equal(t, model.RoleProducer, p.Role)
}

func TestCreateParticipantEmptyFields(t *testing.T) {
	l := newTestLedger(t)
	ic := new(IdentityContract)
	_, err := ic.CreateParticipant(l.as(adminIdentity()), " ", "Alice", "CUSTOMER")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ic.CreateParticipant(l.as(adminIdentity()), "alice", "", "CUSTOMER")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetParticipantAuthorization(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreateParticipant("alice", model.RoleProducer)
	l.mustCreateParticipant("bob", model.RoleCustomer)
	ic := new(IdentityContract)

	self, err := ic.GetParticipant(l.as(participantIdentity("alice", model.RoleProducer)), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", self.ID)

	_, err = ic.GetParticipant(l.as(participantIdentity("bob", model.RoleCustomer)), "alice")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = ic.GetParticipant(l.as(&fakeIdentity{cn: "anon"}), "alice")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = ic.GetParticipant(l.as(adminIdentity()), "zoe")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllParticipants(t *testing.T) {
	l := newTestLedger(t)
	ic := new(IdentityContract)

	empty, err := ic.GetAllParticipants(l.as(adminIdentity()))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	l.mustCreateParticipant("bob", model.RoleCustomer)
	l.mustCreateParticipant("alice", model.RoleProducer)
	l.mustCreateAsset("alice", "A1", 10)

	all, err := ic.GetAllParticipants(l.as(adminIdentity()))
	require.NoError(t, err)
	assert.Equal(t, []model.ParticipantSummary{
		{ID: "alice", Name: "Name of alice", Role: model.RoleProducer},
		{ID: "bob", Name: "Name of bob", Role: model.RoleCustomer},
	}, all)

	_, err = ic.GetAllParticipants(l.as(participantIdentity("alice", model.RoleProducer)))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateParticipantRole(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreateParticipant("bob", model.RoleCustomer)
	ic := new(IdentityContract)

	updated, err := ic.UpdateParticipantRole(l.as(adminIdentity()), "bob", "PRODUCER_CUSTOMER")
	require.NoError(t, err)
	assert.Equal(t, model.RoleProducerCustomer, updated.Role)

	stored, err := model.UnmarshalParticipant(l.rawState("Participant:bob"))
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	_, err = ic.UpdateParticipantRole(l.as(participantIdentity("bob", model.RoleProducerCustomer)), "bob", "PRODUCER")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = ic.UpdateParticipantRole(l.as(adminIdentity()), "zoe", "PRODUCER")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateParticipantRoleInvalidRoleLeavesState(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreateParticipant("bob", model.RoleCustomer)
	before := append([]byte(nil), l.rawState("Participant:bob")...)

	for _, role := range []string{"", "ADMIN", "customer"} {
		_, err := new(IdentityContract).UpdateParticipantRole(l.as(adminIdentity()), "bob", role)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
	assert.Equal(t, before, l.rawState("Participant:bob"))
}

func TestGetCallerIdentity(t *testing.T) {
	l := newTestLedger(t)
	ic := new(IdentityContract)

	claims, err := ic.GetCallerIdentity(l.as(participantIdentity("alice", model.RoleProducer)))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.ParticipantID)
	assert.Equal(t, "PRODUCER", claims.Role)
	assert.False(t, claims.IsAdmin)
	assert.Contains(t, claims.FullID, "CN=alice")

	claims, err = ic.GetCallerIdentity(l.as(adminIdentity()))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Empty(t, claims.ParticipantID)
}

func TestGetRoleCounts(t *testing.T) {
	l := newTestLedger(t)
	l.mustCreateParticipant("alice", model.RoleProducer)
	l.mustCreateParticipant("bob", model.RoleCustomer)
	l.mustCreateParticipant("carol", model.RoleCustomer)
	l.mustCreateAsset("alice", "A1", 10)

	counts, err := new(IdentityContract).GetRoleCounts(l.as(&fakeIdentity{cn: "anon"}))
	require.NoError(t, err)
	assert.Equal(t, []model.RoleCount{
		{Role: model.RoleUnassigned, Count: 0},
		{Role: model.RoleCustomer, Count: 2},
		{Role: model.RoleDistributor, Count: 0},
		{Role: model.RoleProducer, Count: 1},
		{Role: model.RoleProducerCustomer, Count: 0},
	}, counts)
}
