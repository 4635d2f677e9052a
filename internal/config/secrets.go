package config

import "os"

// Environment variable names for host-supplied secrets. These match the
// keys the hosting environment provisions; none of them are persisted in
// the YAML config.
const (
	EnvWeatherAPIKey       = "OPEN_WEATHER_MAP_SECRET"
	EnvOutlookClientID     = "OUTLOOK_CLIENT_ID"
	EnvOutlookClientSecret = "OUTLOOK_CLIENT_SECRET"
	EnvOutlookTenantID     = "OUTLOOK_TENANT_ID"
	EnvOutlookMailbox      = "OUTLOOK_USER_EMAIL"
)

// Secrets holds the credentials loaded from the environment.
type Secrets struct {
	WeatherAPIKey       string
	OutlookClientID     string
	OutlookClientSecret string
	OutlookTenantID     string
	OutlookMailbox      string
}

// LoadSecrets reads all secret values from the environment. Missing values
// are returned as empty strings; callers decide whether a missing secret is
// fatal (weather) or degrades a section (calendar).
func LoadSecrets() Secrets {
	return Secrets{
		WeatherAPIKey:       os.Getenv(EnvWeatherAPIKey),
		OutlookClientID:     os.Getenv(EnvOutlookClientID),
		OutlookClientSecret: os.Getenv(EnvOutlookClientSecret),
		OutlookTenantID:     os.Getenv(EnvOutlookTenantID),
		OutlookMailbox:      os.Getenv(EnvOutlookMailbox),
	}
}

// HasOutlook reports whether the full Outlook client-credential set is
// present. When it is not, the calendar falls back to the configured ICS
// source (if any).
func (s Secrets) HasOutlook() bool {
	return s.OutlookClientID != "" && s.OutlookClientSecret != "" &&
		s.OutlookTenantID != "" && s.OutlookMailbox != ""
}
