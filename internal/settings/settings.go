// Package settings implements the AI Scholar preference record and the
// repository that persists it: defaults merging on load, validated
// mutation, debounced auto-save, quota recovery, reset/clear and
// export/import.
package settings

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Storage keys and the namespace prefix the product has always used.
// Quota recovery deletes everything under the prefix except the two
// canonical keys.
const (
	NamespacePrefix  = "ai-scholar-"
	SettingsKey      = "ai-scholar-settings"
	NotificationsKey = "ai-scholar-notifications"
)

// Settings is the full user preference record. JSON tags match the
// persisted layout consumed by the SPA.
type Settings struct {
	// Appearance
	Theme            string `json:"theme"            validate:"oneof=dark light auto"`
	Language         string `json:"language"         validate:"oneof=en es fr de zh"`
	Timezone         string `json:"timezone"         validate:"required"`
	DateFormat       string `json:"dateFormat"       validate:"oneof=MM/DD/YYYY DD/MM/YYYY YYYY-MM-DD"`
	AutoSave         bool   `json:"autoSave"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
	CompactMode      bool   `json:"compactMode"`
	Animations       bool   `json:"animations"`
	HighContrast     bool   `json:"highContrast"`

	// Research assistant
	DefaultModel   string  `json:"defaultModel"   validate:"required"`
	DefaultDataset string  `json:"defaultDataset" validate:"required"`
	ResponseLength string  `json:"responseLength" validate:"oneof=short medium long"`
	Temperature    float64 `json:"temperature"    validate:"gte=0,lte=2"`

	// Privacy
	DataCollection  bool `json:"dataCollection"`
	Analytics       bool `json:"analytics"`
	CrashReports    bool `json:"crashReports"`
	PersonalizedAds bool `json:"personalizedAds"`

	// Performance
	CacheSize             string `json:"cacheSize"             validate:"oneof=256MB 512MB 1GB 2GB 4GB"`
	MaxConcurrentRequests int    `json:"maxConcurrentRequests" validate:"gte=1,lte=20"`
	RequestTimeout        int    `json:"requestTimeout"        validate:"gte=5,lte=300"`
	EnableGPU             bool   `json:"enableGPU"`

	// Profile
	FullName     string `json:"fullName"`
	Email        string `json:"email" validate:"omitempty,email"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
}

// NotificationSetting is one row of the notification preference list.
type NotificationSetting struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Email       bool   `json:"email"`
	Push        bool   `json:"push"`
	SMS         bool   `json:"sms"`
}

// Defaults returns a fresh copy of the hard-coded default record.
// Callers may mutate the result freely.
func Defaults() Settings {
	return Settings{
		Theme:            "dark",
		Language:         "en",
		Timezone:         "UTC",
		DateFormat:       "MM/DD/YYYY",
		AutoSave:         true,
		SidebarCollapsed: false,
		CompactMode:      false,
		Animations:       true,
		HighContrast:     false,

		DefaultModel:   "scholar-large",
		DefaultDataset: "academic-papers",
		ResponseLength: "medium",
		Temperature:    0.7,

		DataCollection:  true,
		Analytics:       true,
		CrashReports:    true,
		PersonalizedAds: false,

		CacheSize:             "1GB",
		MaxConcurrentRequests: 5,
		RequestTimeout:        30,
		EnableGPU:             false,
	}
}

// DefaultNotifications returns a fresh copy of the default notification
// preference list.
func DefaultNotifications() []NotificationSetting {
	return []NotificationSetting{
		{
			ID:          "research-alerts",
			Name:        "Research Alerts",
			Description: "New papers and citations matching your saved queries",
			Email:       true,
			Push:        true,
			SMS:         false,
		},
		{
			ID:          "document-processing",
			Name:        "Document Processing",
			Description: "Upload, indexing and analysis completion notices",
			Email:       false,
			Push:        true,
			SMS:         false,
		},
		{
			ID:          "security-alerts",
			Name:        "Security Alerts",
			Description: "Sign-ins from new devices and permission changes",
			Email:       true,
			Push:        true,
			SMS:         true,
		},
		{
			ID:          "workflow-runs",
			Name:        "Workflow Runs",
			Description: "Completed and failed automated workflow executions",
			Email:       true,
			Push:        false,
			SMS:         false,
		},
		{
			ID:          "weekly-digest",
			Name:        "Weekly Digest",
			Description: "Summary of your research activity and trends",
			Email:       true,
			Push:        false,
			SMS:         false,
		},
	}
}

var recordValidator = validator.New()

// Validate checks the record against its field constraints and returns
// a map of field name to human-readable message, one message per field
// (the first failing rule wins). An empty map means the record is valid.
func Validate(s *Settings) map[string]string {
	err := recordValidator.Struct(s)
	if err == nil {
		return map[string]string{}
	}

	fieldErrors := map[string]string{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors["record"] = "Settings record could not be validated"
		return fieldErrors
	}

	for _, fe := range validationErrors {
		name := jsonFieldName(fe)
		if _, seen := fieldErrors[name]; seen {
			continue
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	return fieldErrors
}

// fieldMessage renders one validator failure as the message shown next
// to the field.
func fieldMessage(fe validator.FieldError) string {
	name := jsonFieldName(fe)

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "gte":
		return name + " must be at least " + fe.Param()
	case "lte":
		return name + " must be at most " + fe.Param()
	case "email":
		return "Please enter a valid email address"
	default:
		return name + " is invalid"
	}
}

// jsonFieldName maps the struct field to its persisted JSON name.
func jsonFieldName(fe validator.FieldError) string {
	if name, ok := jsonNames[fe.StructField()]; ok {
		return name
	}

	return fe.StructField()
}

var jsonNames = map[string]string{
	"Theme":                 "theme",
	"Language":              "language",
	"Timezone":              "timezone",
	"DateFormat":            "dateFormat",
	"DefaultModel":          "defaultModel",
	"DefaultDataset":        "defaultDataset",
	"ResponseLength":        "responseLength",
	"Temperature":           "temperature",
	"CacheSize":             "cacheSize",
	"MaxConcurrentRequests": "maxConcurrentRequests",
	"RequestTimeout":        "requestTimeout",
	"Email":                 "email",
}
