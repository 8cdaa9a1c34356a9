package models

import "time"

const (
	InviteRedisKey = "discord-invite-finder:invite:%s"
)

// InviteGuild is the guild part of an invite API payload
type InviteGuild struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Icon              string `json:"icon,omitempty"`
	Banner            string `json:"banner,omitempty"`
	Description       string `json:"description,omitempty"`
	Splash            string `json:"splash,omitempty"`
	VanityURLCode     string `json:"vanity_url_code,omitempty"`
	VerificationLevel int    `json:"verification_level"`
}

// InviteChannel is the channel an invite points at
type InviteChannel struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type int    `json:"type"`
}

// InviteUser is the user who created an invite
type InviteUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar,omitempty"`
	Discriminator string `json:"discriminator"`
}

// Invite is the payload of the invite lookup endpoint with counts enabled
type Invite struct {
	Code                     string         `json:"code"`
	Guild                    *InviteGuild   `json:"guild,omitempty"`
	Channel                  *InviteChannel `json:"channel,omitempty"`
	Inviter                  *InviteUser    `json:"inviter,omitempty"`
	ApproximateMemberCount   int            `json:"approximate_member_count"`
	ApproximatePresenceCount int            `json:"approximate_presence_count"`
}

// InviteRedisEntry caches an invite lookup for a bounded time
type InviteRedisEntry struct {
	Invite    Invite
	ExpiresAt time.Time
}
