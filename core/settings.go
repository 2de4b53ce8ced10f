package core

// Settings represents the runtime wiring shared across bot components
type Settings struct {
	Pairs    []string         // List of trading pairs to monitor
	Telegram TelegramSettings // Telegram notification settings
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled bool   // Whether Telegram notifications are enabled
	Token   string // Telegram bot token
	Users   []int  // List of authorized user IDs
}
