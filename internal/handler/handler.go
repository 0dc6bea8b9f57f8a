// Package handler parses textual chat commands and drives the chest,
// economy and cooldown services. It owns access control and the mapping
// of domain errors to user-facing replies; platform packages only bridge
// messages in and replies out.
package handler

import (
	"context"
	"strings"

	"github.com/osse101/LootChestBot_Go/internal/chest"
	"github.com/osse101/LootChestBot_Go/internal/cooldown"
	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/economy"
	"github.com/osse101/LootChestBot_Go/internal/logger"
	"github.com/osse101/LootChestBot_Go/internal/metrics"
)

// Message is one inbound chat message, platform-agnostic.
type Message struct {
	GuildID   string
	ChannelID string
	UserID    string
	Username  string
	Content   string
}

// File references an attachment to send with a reply.
type File struct {
	Name string
	Path string
}

// Reply is the dispatcher's answer to a command.
type Reply struct {
	Content string
	Files   []File
}

// RoleResolver looks up the role IDs a user holds in a guild.
type RoleResolver interface {
	Roles(ctx context.Context, guildID, userID string) ([]string, error)
}

// Dispatcher routes commands to services.
type Dispatcher struct {
	prefix   string
	chests   chest.Service
	economy  economy.Service
	guard    *cooldown.Guard
	roles    RoleResolver
	dropIDs  []string
	grantIDs []string
	commands []*command
}

// Options configures a Dispatcher.
type Options struct {
	Prefix       string
	Chests       chest.Service
	Economy      economy.Service
	Guard        *cooldown.Guard
	Roles        RoleResolver
	DropRoleIDs  []string
	GrantRoleIDs []string
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		prefix:   opts.Prefix,
		chests:   opts.Chests,
		economy:  opts.Economy,
		guard:    opts.Guard,
		roles:    opts.Roles,
		dropIDs:  opts.DropRoleIDs,
		grantIDs: opts.GrantRoleIDs,
	}
	d.commands = commandTable()
	return d
}

// Dispatch handles one message. Returns nil when the message is not a
// command for this bot. Every other outcome, including failures, becomes
// a user-facing reply.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *Message) *Reply {
	name, args, ok := d.parse(msg.Content)
	if !ok {
		return nil
	}

	cmd := d.lookup(name)
	if cmd == nil {
		return nil
	}

	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	log := logger.FromContext(ctx)

	allowed, err := d.authorized(ctx, cmd, msg)
	if err != nil {
		log.Error("Role lookup failed", "command", name, "user", msg.UserID, "error", err)
		metrics.RecordCommand(name, "error")
		return &Reply{Content: msgGenericError}
	}
	if !allowed {
		metrics.RecordCommand(name, "denied")
		return replyForError(domain.ErrPermissionDenied, cmd)
	}

	reply, err := cmd.run(d, ctx, msg, args)
	if err != nil {
		// User-input and eligibility failures are normal traffic; only
		// collaborator failures are log-worthy, and those were already
		// logged at their call sites.
		metrics.RecordCommand(name, "error")
		return replyForError(err, cmd)
	}

	metrics.RecordCommand(name, "ok")
	return reply
}

// parse splits a command line into its name and args. The leading token
// is case-insensitive and must carry the configured prefix.
func (d *Dispatcher) parse(content string) (string, []string, bool) {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) == 0 {
		return "", nil, false
	}
	head := fields[0]
	if !strings.HasPrefix(head, d.prefix) {
		return "", nil, false
	}
	name := strings.ToLower(strings.TrimPrefix(head, d.prefix))
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}

func (d *Dispatcher) lookup(name string) *command {
	for _, cmd := range d.commands {
		if cmd.name == name {
			return cmd
		}
	}
	return nil
}

// authorized checks the command's access level against the caller's roles.
func (d *Dispatcher) authorized(ctx context.Context, cmd *command, msg *Message) (bool, error) {
	var allowList []string
	switch cmd.access {
	case accessEveryone:
		return true, nil
	case accessDrop:
		allowList = d.dropIDs
	case accessGrant:
		allowList = d.grantIDs
	}

	roles, err := d.roles.Roles(ctx, msg.GuildID, msg.UserID)
	if err != nil {
		return false, err
	}
	for _, held := range roles {
		for _, wanted := range allowList {
			if held == wanted {
				return true, nil
			}
		}
	}
	return false, nil
}

// hasAccess reports whether the user may see a command's help section.
func (d *Dispatcher) hasAccess(ctx context.Context, cmd *command, msg *Message) bool {
	ok, err := d.authorized(ctx, cmd, msg)
	return err == nil && ok
}

// parseMention extracts a user ID from a Discord mention token like
// <@123> or <@!123>. Bare IDs pass through unchanged.
func parseMention(arg string) string {
	return strings.NewReplacer("<@", "", "!", "", ">", "").Replace(arg)
}
