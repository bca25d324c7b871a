package cfg

import (
	"time"
)

const (
	ModeScrape = "scrape"
	ModeServe  = "serve"
	ModeNotify = "notify"

	SourceHTML = "html"
	SourceFeed = "feed"
)

type Cfg struct {
	Mode string

	// Scraping
	BaseURL        string
	Source         string
	Pages          int
	StartPage      int
	Deep           bool
	StrategiesFile string
	PageDelay      time.Duration
	DetailDelay    time.Duration
	Timeout        time.Duration
	UserAgent      string

	// Storage
	DataFile string
	DBPath   string

	// Presentation layer
	Port              string
	APIAccessKey      string
	SchedulerInterval time.Duration
	DeepTarget        int
	DeepMaxAttempts   int

	// Notification
	TelegramToken  string
	TelegramChatID string
	PublicURL      string

	// Optional S3 mirror of the collection
	S3Bucket   string
	S3Key      string
	S3Region   string
	S3Endpoint string
	S3KeyID    string
	S3Secret   string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
