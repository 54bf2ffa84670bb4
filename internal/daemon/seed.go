package daemon

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/store"
)

// seed writes the default notification preference list on first run so
// the toggle screen is populated before the first save.
func seed(st store.Store) {
	_, err := st.Load(settings.NotificationsKey)
	if err == nil {
		return
	}

	if !errors.Is(err, store.ErrKeyNotFound) {
		log.Error().Err(err).Msg("failed to probe notification settings during seed")
		return
	}

	defaults, err := json.Marshal(settings.DefaultNotifications())
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal default notification settings")
		return
	}

	if err := st.Save(settings.NotificationsKey, defaults); err != nil {
		log.Error().Err(err).Msg("failed to seed default notification settings")
	}
}
