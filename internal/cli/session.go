package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/scrobblecord/internal/bridge"
	"github.com/tessro/scrobblecord/internal/discord"
	errs "github.com/tessro/scrobblecord/internal/errors"
	"github.com/tessro/scrobblecord/internal/lastfm"
	"github.com/tessro/scrobblecord/internal/presence"
)

// session is a bridge that passed its startup checks.
type session struct {
	lastfm  *lastfm.Client
	discord *discord.Client
	driver  *bridge.Driver
}

type sessionOptions struct {
	interval time.Duration
	refresh  time.Duration
	events   chan<- bridge.Event
}

func newLastFMClient() *lastfm.Client {
	c := lastfm.New(cfg.LastFM.APIKey, lastfm.WithTimeout(cfg.LastFM.TimeoutDuration()))
	if Verbose() {
		c.SetVerbose(true, func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		})
	}
	return c
}

func newDiscordClient() *discord.Client {
	return discord.NewClient(cfg.Discord.ClientID, discord.WithLogger(logger))
}

func payloadOptions() presence.PayloadOptions {
	return presence.PayloadOptions{
		FallbackImage: cfg.Discord.FallbackImage,
		SmallImage:    cfg.Discord.SmallImage,
		SmallText:     cfg.Discord.SmallText,
		ButtonLabel:   cfg.Discord.ButtonLabel,
	}
}

// startSession checks credentials, probes Last.fm and connects to Discord.
// Any error it returns is fatal. Last.fm being unreachable is not: the
// driver retries on every tick.
func startSession(ctx context.Context, opts sessionOptions) (*session, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	user := cfg.LastFM.Username

	lfm := newLastFMClient()
	info, err := lfm.UserInfo(ctx, user)
	switch {
	case lastfm.IsCredentialError(err):
		return nil, err
	case err != nil:
		logger.Warn("could not reach Last.fm, will keep trying", "error", err)
	default:
		logger.Debug("last.fm user found", "user", info.Name, "playcount", info.PlayCount)
	}

	dc := newDiscordClient()
	if err := dc.Connect(ctx); err != nil {
		if discord.IsInvalidClientID(err) {
			return nil, errs.WithSuggestion(err,
				"discord.client_id must be the application ID from https://discord.com/developers/applications")
		}
		if errs.IsFatal(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrDiscordUnavailable, err)
	}

	refresh := opts.refresh
	if refresh <= 0 {
		refresh = cfg.Sync.Refresh()
	}
	interval := opts.interval
	if interval <= 0 {
		interval = cfg.Sync.Poll()
	}

	rec := presence.New(
		presence.WithMinInterval(refresh),
		presence.WithPayloadOptions(payloadOptions()),
	)
	driver := bridge.NewDriver(lfm, dc, rec, user,
		bridge.WithInterval(interval),
		bridge.WithLogger(logger),
		bridge.WithEvents(opts.events),
	)

	return &session{
		lastfm:  lfm,
		discord: dc,
		driver:  driver,
	}, nil
}

func (s *session) discordUser() string {
	return s.discord.User().DisplayName()
}

// close releases the Discord connection, which also clears the presence.
func (s *session) close() {
	if err := s.discord.Close(); err != nil {
		logger.Debug("failed to close discord connection", "error", err)
	}
}
