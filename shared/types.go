package shared

type ServerConfig struct {
	Sqlite      SqliteConfig      `mapstructure:"sqlite" validate:"required"`
	RecruitEdge RecruitEdgeConfig `mapstructure:"recruitEdge" validate:"required"`
	Google      GoogleConfig      `mapstructure:"google"`
	PeopleData  PeopleDataConfig  `mapstructure:"peopleData" validate:"required"`
	Llm         LlmConfig         `mapstructure:"llm"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type RecruitEdgeConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	GmailTokenFile         string        `mapstructure:"gmailTokenFile"`
	GmailCredentialsFile   string        `mapstructure:"gmailCredentialsFile"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket                    string      `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string      `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string      `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync interface{} `mapstructure:"enableSqliteBackupAndSync" validate:"omitempty,bool"`
}

// PeopleDataConfig holds credentials for the people-search vendor.
type PeopleDataConfig struct {
	ApiKey  string `mapstructure:"apiKey" validate:"required"`
	BaseURL string `mapstructure:"baseUrl"`
}

// LlmConfig holds credentials for the hosted text-generation model.
// When ApiKey is empty, email composition falls back to static templates.
type LlmConfig struct {
	ApiKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}
