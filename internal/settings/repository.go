package settings

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
	"github.com/ai-scholar/scholar-admin/internal/store"
)

// Notifier receives human-readable outcome messages for the user. The
// announcement sink implements it; a nil Notifier discards messages.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// Repository owns the in-memory settings record and its persistence.
// All access goes through the repository; the store and clock are
// injected so tests can substitute both.
type Repository struct {
	mu            sync.Mutex
	store         store.Store
	clock         func() time.Time
	notifier      Notifier
	settings      Settings
	notifications []NotificationSetting
	autoFlush     *debouncer
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the repository clock.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) { r.clock = clock }
}

// WithNotifier wires the user-facing message sink.
func WithNotifier(n Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

// WithAutoSaveDelay overrides the auto-save quiet window.
func WithAutoSaveDelay(delay time.Duration) Option {
	return func(r *Repository) {
		r.autoFlush = newDebouncer(delay, r.flushFromTimer)
	}
}

// NewRepository creates a repository over the given blob store. The
// in-memory record starts at the defaults; call Load to hydrate it.
func NewRepository(st store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:         st,
		clock:         time.Now,
		settings:      Defaults(),
		notifications: DefaultNotifications(),
	}
	r.autoFlush = newDebouncer(DefaultAutoSaveDelay, r.flushFromTimer)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Load hydrates the in-memory record from the store. A missing key
// falls back to defaults; a stored value overrides the default for
// every key it contains (shallow merge, stored values win). A corrupt
// blob falls back to defaults and surfaces a critical notice instead
// of failing.
func (r *Repository) Load() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := Defaults()

	raw, err := r.store.Load(SettingsKey)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &merged); jsonErr != nil {
			log.Error().Err(jsonErr).Msg("stored settings are corrupt, falling back to defaults")
			merged = Defaults()
			r.notifyError("Your settings could not be loaded and have been reset to defaults.")
		}
	case errors.Is(err, store.ErrKeyNotFound):
		// first run, defaults apply
	default:
		log.Error().Err(err).Msg("failed to load settings")
		r.notifyError("Your settings could not be loaded and have been reset to defaults.")
	}

	r.settings = merged
	r.notifications = r.loadNotifications()

	return r.settings
}

// loadNotifications reads the notification list, falling back to the
// default list on absence or corruption. Caller holds the lock.
func (r *Repository) loadNotifications() []NotificationSetting {
	raw, err := r.store.Load(NotificationsKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			log.Error().Err(err).Msg("failed to load notification settings")
		}
		return DefaultNotifications()
	}

	var list []NotificationSetting
	if jsonErr := json.Unmarshal(raw, &list); jsonErr != nil {
		log.Error().Err(jsonErr).Msg("stored notification settings are corrupt, falling back to defaults")
		return DefaultNotifications()
	}

	return list
}

// Settings returns a copy of the current record.
func (r *Repository) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.settings
}

// Notifications returns a copy of the current notification list.
func (r *Repository) Notifications() []NotificationSetting {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.notifications)
}

// Update applies mutate to a copy of the record, validates the result
// and commits it only when valid. On validation failure the per-field
// message map is returned alongside a KindValidation error and the
// record is left untouched. When auto-save is enabled a debounced
// flush is scheduled; otherwise the caller flushes explicitly.
func (r *Repository) Update(mutate func(*Settings)) (map[string]string, error) {
	r.mu.Lock()

	candidate := r.settings
	mutate(&candidate)

	if fieldErrors := Validate(&candidate); len(fieldErrors) > 0 {
		r.mu.Unlock()
		return fieldErrors, apperr.New(apperr.KindValidation, "settings validation failed")
	}

	r.settings = candidate
	autoSave := candidate.AutoSave
	r.mu.Unlock()

	if autoSave {
		r.autoFlush.trigger()
	}

	return nil, nil
}

// SetNotificationChannel toggles one delivery channel of one
// notification setting.
func (r *Repository) SetNotificationChannel(id, channel string, enabled bool) error {
	r.mu.Lock()

	idx := slices.IndexFunc(r.notifications, func(n NotificationSetting) bool {
		return n.ID == id
	})
	if idx < 0 {
		r.mu.Unlock()
		return apperr.New(apperr.KindValidation, "unknown notification setting: "+id)
	}

	switch channel {
	case "email":
		r.notifications[idx].Email = enabled
	case "push":
		r.notifications[idx].Push = enabled
	case "sms":
		r.notifications[idx].SMS = enabled
	default:
		r.mu.Unlock()
		return apperr.New(apperr.KindValidation, "unknown notification channel: "+channel)
	}

	autoSave := r.settings.AutoSave
	r.mu.Unlock()

	if autoSave {
		r.autoFlush.trigger()
	}

	return nil
}

// Save persists the current record and notification list. An explicit
// save cancels any pending debounced flush first, so the two paths
// never race a double write.
func (r *Repository) Save() error {
	r.autoFlush.stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked()
}

// Reset restores defaults in memory and in the store. The defaults are
// copied, never shared, so later mutation of the record cannot bleed
// into a subsequent reset.
func (r *Repository) Reset() error {
	r.autoFlush.stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = Defaults()
	r.notifications = DefaultNotifications()

	return r.saveLocked()
}

// Clear removes the persisted entries entirely and resets the
// in-memory state to defaults.
func (r *Repository) Clear() error {
	r.autoFlush.stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = Defaults()
	r.notifications = DefaultNotifications()

	if err := r.store.Delete(SettingsKey); err != nil {
		return err
	}

	return r.store.Delete(NotificationsKey)
}

// Close cancels any pending auto-save flush.
func (r *Repository) Close() {
	r.autoFlush.stop()
}

// flushFromTimer is the debounced auto-save target.
func (r *Repository) flushFromTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveLocked(); err != nil {
		log.Error().Err(err).Msg("auto-save flush failed")
		r.notifyError("Auto-save failed. Your latest changes may not be persisted.")
	}
}

// saveLocked writes both canonical keys. Caller holds the lock.
func (r *Repository) saveLocked() error {
	settingsJSON, err := json.Marshal(r.settings)
	if err != nil {
		return err
	}

	notificationsJSON, err := json.Marshal(r.notifications)
	if err != nil {
		return err
	}

	if err := r.saveWithQuotaRecovery(SettingsKey, settingsJSON); err != nil {
		return err
	}

	return r.saveWithQuotaRecovery(NotificationsKey, notificationsJSON)
}

// saveWithQuotaRecovery writes one key. When the store reports a
// storage/quota failure it deletes every namespaced key except the two
// canonical ones and retries the write once.
func (r *Repository) saveWithQuotaRecovery(key string, value []byte) error {
	err := r.store.Save(key, value)
	if err == nil {
		return nil
	}
	if apperr.Classify(err) != apperr.KindStorage {
		return err
	}

	log.Warn().Err(err).Str("key", key).Msg("storage full, attempting quota recovery")

	keys, keysErr := r.store.Keys(NamespacePrefix)
	if keysErr != nil {
		return err
	}

	for _, k := range keys {
		if k == SettingsKey || k == NotificationsKey {
			continue
		}
		if delErr := r.store.Delete(k); delErr != nil {
			log.Warn().Err(delErr).Str("key", k).Msg("quota recovery delete failed")
		}
	}

	if retryErr := r.store.Save(key, value); retryErr != nil {
		r.notifyError(apperr.UserMessage(apperr.KindStorage))
		return retryErr
	}

	return nil
}

func (r *Repository) notifyError(message string) {
	if r.notifier != nil {
		r.notifier.Error(message)
	}
}
