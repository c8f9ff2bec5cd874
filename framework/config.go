package framework

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shaurya/recordkit/config"
	"github.com/spf13/viper"
)

// LoadConfig reads <dir>/app.yaml, merges <dir>/environments/<env>.yaml and
// applies environment variables (RECORD_DATE_FORMAT_DISPLAY overrides
// record.date_format_display). Missing files fall back to config.Defaults.
func LoadConfig(dir string) (*config.Config, error) {
	v := viper.New()
	setDefaults(v, config.Defaults())

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Set configuration path
	v.AddConfigPath(dir)
	v.SetConfigName("app")
	v.SetConfigType("yaml")

	// Read base config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read app.yaml: %w", err)
		}
	}

	// Environment-specific override
	v.SetConfigName("environments/" + env)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read environments/%s.yaml: %w", env, err)
		}
	}

	// Read environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.port", d.App.Port)
	v.SetDefault("app.env", d.App.Env)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.pool", d.Database.Pool)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.slow_query_ms", d.Database.SlowQueryMs)
	v.SetDefault("database.migrations_dir", d.Database.MigrationsDir)

	v.SetDefault("record.date_format_save", d.Record.DateFormatSave)
	v.SetDefault("record.date_format_display", d.Record.DateFormatDisplay)
	v.SetDefault("record.timezone", d.Record.Timezone)
	v.SetDefault("record.not_found_category", d.Record.NotFoundCategory)
	v.SetDefault("record.not_found_message", d.Record.NotFoundMessage)

	v.SetDefault("i18n.locales_dir", d.I18n.LocalesDir)
	v.SetDefault("i18n.locale", d.I18n.Locale)
	v.SetDefault("i18n.default_locale", d.I18n.DefaultLocale)
}
