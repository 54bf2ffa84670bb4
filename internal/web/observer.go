package web

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/announce"
	"github.com/ai-scholar/scholar-admin/internal/retry"
	settingshandler "github.com/ai-scholar/scholar-admin/internal/web/handler/settings"
)

// pipelineAnnouncer bridges retry pipeline events into the
// announcement queue.
type pipelineAnnouncer struct {
	announcer *announce.Announcer
}

func (p pipelineAnnouncer) AttemptStarted(label string, attempt, maxAttempts int) {
	log.Debug().Str("label", label).Int("attempt", attempt).Int("max", maxAttempts).Msg("pipeline attempt")
}

func (p pipelineAnnouncer) RetryScheduled(label string, attempt int, delay time.Duration, err error) {
	log.Warn().Err(err).Str("label", label).Int("attempt", attempt).Dur("delay", delay).Msg("pipeline retry scheduled")
}

func (p pipelineAnnouncer) Succeeded(label string, attempts int) {
	if label == settingshandler.SaveLabel {
		p.announcer.Info("Settings saved successfully.")
	}
}

func (p pipelineAnnouncer) Exhausted(label string, failure retry.Failure) {
	p.announcer.Error(failure.Message)
}
