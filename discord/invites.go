package discord

import (
	"sort"
	"strings"

	"github.com/Seklfreak/discord-invite-finder/helpers"
)

const (
	// InviteCodeMinLength and InviteCodeMaxLength bound a valid invite code,
	// vanity codes can get fairly long
	InviteCodeMinLength = 2
	InviteCodeMaxLength = 25
)

var invitePrefixes = []string{
	"https://discord.gg/",
	"http://discord.gg/",
	"https://discord.com/invite/",
	"http://discord.com/invite/",
	"https://discordapp.com/invite/",
	"http://discordapp.com/invite/",
}

// IsValidInviteCode reports whether $code could be a Discord invite code
func IsValidInviteCode(code string) bool {
	if len(code) < InviteCodeMinLength || len(code) > InviteCodeMaxLength {
		return false
	}
	for _, c := range code {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}

// ExtractInviteCodes scans $text for invite references and returns the
// distinct codes found. Malformed or empty input yields an empty result.
// Tokens longer than the code bound are rejected, not truncated.
func ExtractInviteCodes(text string) (codes []string) {
	matches := helpers.InviteReferenceRegex.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return codes
	}

	seen := make(map[string]bool)
	for _, match := range matches {
		code := match[1]
		if !IsValidInviteCode(code) {
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	sort.Strings(codes)
	return codes
}

// GetInviteCode extracts the code of an invitation from a canonical invite url
func GetInviteCode(inviteUrl string) (code string, ok bool) {
	for _, prefix := range invitePrefixes {
		if !strings.HasPrefix(inviteUrl, prefix) {
			continue
		}
		code = strings.TrimPrefix(inviteUrl, prefix)
		if IsValidInviteCode(code) {
			return code, true
		}
	}
	return "", false
}

// InviteURL returns the canonical url for an invite code
func InviteURL(code string) string {
	return "https://discord.com/invite/" + code
}
