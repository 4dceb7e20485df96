package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port              string
	SchedulerInterval int
	APIAccessKey      string

	// Photo folder source (Google Drive)
	DriveBaseUrl     string
	DriveAccessToken string

	// Caption service (Anthropic)
	AnthropicBaseUrl string
	AnthropicAPIKey  string
	CaptionModel     string

	// Publishing target (Instagram Graph API)
	GraphBaseUrl         string
	InstagramAccountID   string
	InstagramAccessToken string
	PublicBaseUrl        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
