package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	roleCacheSize = 1024
	roleCacheTTL  = 5 * time.Minute
)

// memberLookup is the slice of the session API the resolver needs.
type memberLookup interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// RoleResolver fetches a member's role IDs, caching results so that a
// burst of commands doesn't hammer the guild member endpoint.
type RoleResolver struct {
	api   memberLookup
	cache *expirable.LRU[string, []string]
}

// NewRoleResolver creates a RoleResolver backed by the session.
func NewRoleResolver(session *discordgo.Session) *RoleResolver {
	return newRoleResolver(session)
}

func newRoleResolver(api memberLookup) *RoleResolver {
	return &RoleResolver{
		api:   api,
		cache: expirable.NewLRU[string, []string](roleCacheSize, nil, roleCacheTTL),
	}
}

// Roles returns the role IDs the user holds in the guild.
func (r *RoleResolver) Roles(ctx context.Context, guildID, userID string) ([]string, error) {
	key := guildID + ":" + userID
	if roles, found := r.cache.Get(key); found {
		return roles, nil
	}

	member, err := r.api.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s in guild %s: %w", userID, guildID, err)
	}

	roles := member.Roles
	if roles == nil {
		roles = []string{}
	}
	r.cache.Add(key, roles)
	return roles, nil
}

// Invalidate drops a member's cached roles. Useful after a role grant.
func (r *RoleResolver) Invalidate(guildID, userID string) {
	r.cache.Remove(guildID + ":" + userID)
}
