package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberAPI struct {
	roles map[string][]string
	calls int
	err   error
}

func (f *fakeMemberAPI) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Member{Roles: f.roles[guildID+":"+userID]}, nil
}

func TestRolesCachesLookups(t *testing.T) {
	api := &fakeMemberAPI{roles: map[string][]string{
		"g1:u1": {"r1", "r2"},
	}}
	r := newRoleResolver(api)
	ctx := context.Background()

	roles, err := r.Roles(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, roles)
	assert.Equal(t, 1, api.calls)

	_, err = r.Roles(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls, "second lookup should hit the cache")

	r.Invalidate("g1", "u1")
	_, err = r.Roles(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)
}

func TestRolesLookupFailureIsNotCached(t *testing.T) {
	api := &fakeMemberAPI{err: fmt.Errorf("gateway timeout")}
	r := newRoleResolver(api)

	_, err := r.Roles(context.Background(), "g1", "u1")
	require.Error(t, err)

	api.err = nil
	api.roles = map[string][]string{"g1:u1": {"r1"}}
	roles, err := r.Roles(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, roles)
}

func TestRolesMemberWithNoRoles(t *testing.T) {
	api := &fakeMemberAPI{roles: map[string][]string{}}
	r := newRoleResolver(api)

	roles, err := r.Roles(context.Background(), "g1", "u1")
	require.NoError(t, err)
	assert.Empty(t, roles)
	assert.NotNil(t, roles)
}
