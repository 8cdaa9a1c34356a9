package discord

import (
	"fmt"
	"time"

	"github.com/Seklfreak/discord-invite-finder/cache"
	"github.com/Seklfreak/discord-invite-finder/helpers"
	"github.com/Seklfreak/discord-invite-finder/metrics"
	"github.com/Seklfreak/discord-invite-finder/models"
	redisCache "github.com/go-redis/cache"
	"github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const inviteAPIUrl = "https://discord.com/api/v6/invites/%s?with_counts=true"

const inviteCacheLifetime = time.Hour * 23

// FetchInvite loads invite metadata from the invite API. Responses are kept
// in the redis cache for a bounded time when a redis client is configured,
// the API ratelimits lookups aggressively.
func FetchInvite(code string) (invite *models.Invite, err error) {
	if !IsValidInviteCode(code) {
		return nil, errors.New("invalid invite code")
	}

	key := fmt.Sprintf(models.InviteRedisKey, code)
	if cache.HasRedisClient() {
		var entry models.InviteRedisEntry
		if err = cache.GetRedisCacheCodec().Get(key, &entry); err == nil {
			if time.Now().Before(entry.ExpiresAt) {
				return &entry.Invite, nil
			}
		}
	}

	metrics.InviteLookups.Add(1)

	page, err := helpers.FetchPageUA(fmt.Sprintf(inviteAPIUrl, code), helpers.DEFAULT_UA, 15*time.Second)
	if err != nil {
		return nil, err
	}

	invite = new(models.Invite)
	err = jsoniter.Unmarshal(page.Body, invite)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse invite api response")
	}

	if cache.HasRedisClient() {
		entry := models.InviteRedisEntry{
			Invite:    *invite,
			ExpiresAt: time.Now().Add(inviteCacheLifetime),
		}
		cacheErr := cache.GetRedisCacheCodec().Set(&redisCache.Item{
			Key:        key,
			Object:     entry,
			Expiration: inviteCacheLifetime,
		})
		helpers.RelaxLog(cacheErr)
	}

	return invite, nil
}
