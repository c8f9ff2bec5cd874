package config

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Record   RecordConfig   `mapstructure:"record"`
	I18n     I18nConfig     `mapstructure:"i18n"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Name          string `mapstructure:"name"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Pool          int    `mapstructure:"pool"`
	SSLMode       string `mapstructure:"ssl_mode"`
	SlowQueryMs   int    `mapstructure:"slow_query_ms"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// RecordConfig configures the record helpers.
type RecordConfig struct {
	DateFormatSave    string `mapstructure:"date_format_save"`
	DateFormatDisplay string `mapstructure:"date_format_display"`
	Timezone          string `mapstructure:"timezone"`
	NotFoundCategory  string `mapstructure:"not_found_category"`
	NotFoundMessage   string `mapstructure:"not_found_message"`
}

type I18nConfig struct {
	LocalesDir    string `mapstructure:"locales_dir"`
	Locale        string `mapstructure:"locale"`
	DefaultLocale string `mapstructure:"default_locale"`
}

// Defaults returns the configuration used when no file overrides a value.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Name: "MyApp",
			Port: 3000,
			Env:  "development",
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Pool:          10,
			SSLMode:       "disable",
			SlowQueryMs:   200,
			MigrationsDir: "db/migrations",
		},
		Record: RecordConfig{
			DateFormatSave:    "yyyy-MM-dd HH:mm:ss",
			DateFormatDisplay: "dd.MM.yyyy HH:mm:ss",
			Timezone:          "UTC",
			NotFoundCategory:  "core",
			NotFoundMessage:   "The requested item does not exist in the database.",
		},
		I18n: I18nConfig{
			LocalesDir:    "config/locales",
			Locale:        "en",
			DefaultLocale: "en",
		},
	}
}
