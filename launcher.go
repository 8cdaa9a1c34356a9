package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"

	"time"

	"github.com/Seklfreak/discord-invite-finder/cache"
	"github.com/Seklfreak/discord-invite-finder/crawler"
	"github.com/Seklfreak/discord-invite-finder/discord"
	"github.com/Seklfreak/discord-invite-finder/google"
	"github.com/Seklfreak/discord-invite-finder/helpers"
	"github.com/Seklfreak/discord-invite-finder/intermediary"
	"github.com/Seklfreak/discord-invite-finder/logging"
	"github.com/Seklfreak/discord-invite-finder/metrics"
	"github.com/Seklfreak/discord-invite-finder/models"
	"github.com/Seklfreak/discord-invite-finder/version"
	"github.com/bwmarrin/discordgo"
	"github.com/davecgh/go-spew/spew"
	"github.com/getsentry/raven-go"
	"github.com/go-redis/redis"
	"github.com/karrick/tparse/v2"
	"github.com/kz/discordrus"
	"github.com/sirupsen/logrus"
)

var FinderRuntimeChannel chan os.Signal

// Entrypoint
func main() {
	var err error

	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read config
	helpers.LoadConfig("config.json")
	config := helpers.GetConfig()

	// Check if the finder is being debugged
	if config.Path("debug").Data().(bool) {
		helpers.DEBUG_MODE = true
	}

	if config.Path("logging.jsonfile").Data().(string) != "" {
		fileHook, err := logging.NewLogrusFileHook(config.Path("logging.jsonfile").Data().(string), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
		}
	}

	if config.Path("logging.discord_webhook").Data().(string) != "" {
		log.Hooks.Add(discordrus.NewHook(
			config.Path("logging.discord_webhook").Data().(string),
			logrus.ErrorLevel,
			&discordrus.Opts{
				Username:           "Logging",
				DisableTimestamp:   false,
				TimestampFormat:    "Jan 2 15:04:05.00000",
				EnableCustomColors: true,
				CustomLevelColors: &discordrus.LevelColors{
					Error: 13631488,
					Panic: 13631488,
					Fatal: 13631488,
				},
			},
		))
	}

	log.WithField("module", "launcher").Info("Booting the invite finder...")

	// Show version
	version.DumpInfo()

	// Start metric server
	metrics.Init()

	// Make the randomness more random
	rand.Seed(time.Now().UTC().UnixNano())

	// Print UA
	log.WithField("module", "launcher").Info("USERAGENT: '" + helpers.DEFAULT_UA + "'")

	// Call home
	log.WithField("module", "launcher").Info("[SENTRY] Calling home...")
	err = raven.SetDSN(config.Path("sentry").Data().(string))
	if err != nil {
		panic(err)
	}
	if version.FINDER_VERSION != "DEV_SNAPSHOT" {
		raven.SetRelease(version.FINDER_VERSION)
	}
	log.WithField("module", "launcher").Info("[SENTRY] Someone picked up the phone \\^-^/")

	// Allocate the shared http client
	cache.SetHTTPClient(helpers.NewHTTPClient())

	// Connect to redis when configured, the invite lookup cache needs it
	if config.Path("redis.address").Data().(string) != "" {
		log.WithField("module", "launcher").Info("Connecting to redis...")
		redisClient := redis.NewClient(&redis.Options{
			Addr:     config.Path("redis.address").Data().(string),
			Password: "", // no password set
			DB:       0,  // use default DB
		})
		cache.SetRedisClient(redisClient)
	}

	// Create the announcement session when configured, REST only, no gateway
	var announceSession *discordgo.Session
	announceChannelID := config.Path("discord.announce_channel_id").Data().(string)
	if config.Path("discord.token").Data().(string) != "" && announceChannelID != "" {
		log.WithField("module", "launcher").Info("Connecting announcer to discord...")
		announceSession, err = discordgo.New("Bot " + config.Path("discord.token").Data().(string))
		if err != nil {
			raven.CaptureErrorAndWait(err, nil)
			panic(err)
		}
	}

	searcher := google.NewSearcher(config.Path("google.time_window").Data().(string))
	inviteCrawler := crawler.New(
		searcher,
		intermediary.NewResolver(),
		int(config.Path("crawler.concurrency").Data().(float64)),
	)
	maxPages := int(config.Path("crawler.max_pages").Data().(float64))
	interval := config.Path("crawler.interval").Data().(string)

	go func() {
		defer helpers.Recover()

		for {
			runCrawl(inviteCrawler, maxPages, announceSession, announceChannelID)

			nextRun, err := tparse.AddDuration(time.Now(), interval)
			if err != nil {
				log.WithField("module", "launcher").Error("invalid crawler interval, falling back to one hour: ", err.Error())
				nextRun = time.Now().Add(time.Hour)
			}
			log.WithField("module", "launcher").Info("next crawl at ", nextRun.Format(time.RFC3339))
			time.Sleep(time.Until(nextRun))
		}
	}()

	// Make a channel that waits for a os signal
	FinderRuntimeChannel = make(chan os.Signal, 1)
	signal.Notify(FinderRuntimeChannel, os.Interrupt, os.Kill)

	// Wait until the os wants us to shutdown
	<-FinderRuntimeChannel

	log.WithField("module", "launcher").Info("The invite finder is stopping")
}

// runCrawl walks the discovery pages once and reports every invite found
func runCrawl(inviteCrawler *crawler.Crawler, maxPages int, session *discordgo.Session, channelID string) {
	log := cache.GetLogger().WithField("module", "launcher")

	announced := make(map[string]bool)

	for page := 0; page < maxPages; page++ {
		results, err := inviteCrawler.RunPage(page)
		if err != nil {
			helpers.RelaxLog(err)
			return
		}
		if len(results) == 0 {
			// the result set is exhausted
			return
		}

		for _, result := range results {
			if result == nil {
				continue
			}
			if result.Err != nil {
				log.Warn("resolution failed: ", result.Err.Error())
				continue
			}

			for _, code := range result.InviteCodes {
				log.Info("invite link found: ", discord.InviteURL(code), " (source: ", result.SourceURL, ")")

				if announced[code] {
					continue
				}
				announced[code] = true

				if session != nil && channelID != "" {
					announceInvite(session, channelID, code, result)
				}
			}
		}
	}
}

// announceInvite posts a found invite to the configured channel, enriched
// with metadata from the invite api where the lookup succeeds
func announceInvite(session *discordgo.Session, channelID string, code string, result *models.ResolutionResult) {
	embed := &discordgo.MessageEmbed{
		Title: discord.InviteURL(code),
		URL:   discord.InviteURL(code),
		Color: 0x7289DA,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "found on " + result.SourceURL,
		},
	}

	invite, err := discord.FetchInvite(code)
	if err != nil {
		helpers.RelaxLog(err)
	} else {
		if helpers.DEBUG_MODE {
			fmt.Printf("%s\n", spew.Sdump(invite))
		}

		if invite.Guild != nil {
			embed.Description = invite.Guild.Name
			if invite.Guild.Description != "" {
				embed.Description += "\n" + invite.Guild.Description
			}
		}
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:   "Members",
				Value:  strconv.Itoa(invite.ApproximateMemberCount),
				Inline: true,
			},
			{
				Name:   "Online",
				Value:  strconv.Itoa(invite.ApproximatePresenceCount),
				Inline: true,
			},
		}
	}

	_, err = session.ChannelMessageSendEmbed(channelID, embed)
	helpers.RelaxLog(err)
}
