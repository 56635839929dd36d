package worker

// command_expiry.go
// Background goroutine that periodically cancels terminal commands stuck in
// QUEUED past their TTL, so a terminal that never reconnects does not leave
// work pending forever.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const expiryTickInterval = 1 * time.Minute

// CommandExpirer cancels queued commands older than cutoff.
// Satisfied by service.CommandService.
type CommandExpirer interface {
	ExpireQueued(ctx context.Context, cutoff time.Time) (int, error)
}

// StartCommandExpiryCron launches a background goroutine that ticks every
// minute and expires commands queued for longer than ttl. It respects the
// context for graceful shutdown.
func StartCommandExpiryCron(ctx context.Context, expirer CommandExpirer, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(expiryTickInterval)
		defer ticker.Stop()

		log.Info().Dur("ttl", ttl).Msg("command_expiry: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("command_expiry: shutting down")
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-ttl)
				n, err := expirer.ExpireQueued(ctx, cutoff)
				if err != nil {
					log.Error().Err(err).Msg("command_expiry: sweep failed")
					continue
				}
				if n > 0 {
					log.Info().Int("expired", n).Msg("command_expiry: stale commands cancelled")
				}
			}
		}
	}()
}
