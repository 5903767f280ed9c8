package config

const (
	defaultDataDir            = "~/.local/share/comicgrabr"
	defaultLogDir             = "~/.local/share/comicgrabr/logs"
	defaultLogRetentionDays   = 7
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLCGLoginURL        = "https://leagueofcomicgeeks.com/login"
	defaultLCGExportURL       = "https://leagueofcomicgeeks.com/member/export_pulls"
	defaultLCGTimeout         = 30
	defaultAirDCPPAPIURL      = "http://127.0.0.1:5600/api/v1/"
	defaultAirDCPPTimeout     = 30
	defaultSearchResultLimit  = 100
	defaultPollAttempts       = 3
	defaultPollInitialDelay   = 7
	defaultPollDelayIncrement = 5
	defaultReleaseDelay       = 1
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LCG: LCG{
			LoginURL:       defaultLCGLoginURL,
			ExportURL:      defaultLCGExportURL,
			RequestTimeout: defaultLCGTimeout,
		},
		AirDCPP: AirDCPP{
			APIURL:         defaultAirDCPPAPIURL,
			RequestTimeout: defaultAirDCPPTimeout,
		},
		Search: Search{
			ResultLimit:        defaultSearchResultLimit,
			PollAttempts:       defaultPollAttempts,
			PollInitialDelay:   defaultPollInitialDelay,
			PollDelayIncrement: defaultPollDelayIncrement,
			ReleaseDelay:       defaultReleaseDelay,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			PerRelease:     true,
			Upcoming:       true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
