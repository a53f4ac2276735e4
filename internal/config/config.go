package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Venue      Venue      `yaml:"venue"`
	Booking    Booking    `yaml:"booking"`
	Calendar   Calendar   `yaml:"calendar"`
	Telegram   Telegram   `yaml:"telegram"`
	Monitoring Monitoring `yaml:"monitoring"`
	Log        Log        `yaml:"log"`
}

// Venue describes the booking site endpoints and the activity to book.
type Venue struct {
	BaseURL           string  `yaml:"base_url"`
	FreeCourtsPath    string  `yaml:"free_courts_path"`
	BookingsPath      string  `yaml:"bookings_path"`
	ActivityID        int     `yaml:"activity_id"`
	ActivityName      string  `yaml:"activity_name"`
	WidgetID          string  `yaml:"widget_id"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	RequestBurst      int     `yaml:"request_burst"`
}

type Booking struct {
	LookaheadDays int `yaml:"lookahead_days"`
	AheadDays     int `yaml:"ahead_days"`
}

type Calendar struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	CalendarID      string `yaml:"calendar_id"`
	EventKeyword    string `yaml:"event_keyword"`
	Timezone        string `yaml:"timezone"`
	Location        string `yaml:"location"`
	Description     string `yaml:"description"`
	ReminderMinutes int    `yaml:"reminder_minutes"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type Monitoring struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

type Log struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Load reads the YAML config at path, falling back to configs/config.yaml.
// A missing file is only an error when the path was given explicitly; the
// built-in defaults cover a full run against the venue.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Venue.BaseURL == "" {
		c.Venue.BaseURL = "https://www.sportarenan.se"
	}
	if c.Venue.FreeCourtsPath == "" {
		c.Venue.FreeCourtsPath = "/wp-content/themes/sportarenan/sportarenan-functions/wb/list_free_courts.php"
	}
	if c.Venue.BookingsPath == "" {
		c.Venue.BookingsPath = "/min-sida/?kategori=bokningar"
	}
	if c.Venue.ActivityID == 0 {
		c.Venue.ActivityID = 2
	}
	if c.Venue.ActivityName == "" {
		c.Venue.ActivityName = "Badminton"
	}
	if c.Venue.WidgetID == "" {
		c.Venue.WidgetID = "reserve_lanes_1"
	}
	if c.Venue.UserAgent == "" {
		c.Venue.UserAgent = "Mozilla/5.0 (compatible; courtbooker/1.0)"
	}
	if c.Venue.RequestsPerSecond <= 0 {
		c.Venue.RequestsPerSecond = 2
	}
	if c.Venue.RequestBurst <= 0 {
		c.Venue.RequestBurst = 1
	}
	if c.Booking.LookaheadDays <= 0 {
		c.Booking.LookaheadDays = 16
	}
	if c.Booking.AheadDays <= 0 {
		c.Booking.AheadDays = 14
	}
	if c.Calendar.CredentialsFile == "" {
		c.Calendar.CredentialsFile = "credentials.json"
	}
	if c.Calendar.TokenFile == "" {
		c.Calendar.TokenFile = "token.json"
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = "primary"
	}
	if c.Calendar.EventKeyword == "" {
		c.Calendar.EventKeyword = "Badminton"
	}
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = "Europe/Stockholm"
	}
	if c.Calendar.Location == "" {
		c.Calendar.Location = "Sportarenan, Bergsätersgatan 21, 421 66 Västra Frölunda, Sweden"
	}
	if c.Calendar.Description == "" {
		c.Calendar.Description = "This is an automated event"
	}
	if c.Calendar.ReminderMinutes <= 0 {
		c.Calendar.ReminderMinutes = 540
	}
	if c.Monitoring.Job == "" {
		c.Monitoring.Job = "courtbooker"
	}
	if c.Log.File == "" {
		c.Log.File = "booking.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
