package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultProfile = "default"

// Target names accepted in a profile's target list.
const (
	TargetSendGrid          = "sendgrid"
	TargetBrevo             = "brevo"
	TargetMarketingPlatform = "marketing_platform"
	TargetSimpleTexting     = "simpletexting"
	TargetQueue             = "queue"
	TargetStream            = "stream"
	TargetAlert             = "alert"
)

var AllTargets = []string{
	TargetSendGrid,
	TargetBrevo,
	TargetMarketingPlatform,
	TargetSimpleTexting,
	TargetQueue,
	TargetStream,
	TargetAlert,
}

type Config struct {
	Port           string        `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	EmailValidator string        `mapstructure:"email_validator"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`

	SendGrid          SendGridConfig          `mapstructure:"sendgrid"`
	Brevo             BrevoConfig             `mapstructure:"brevo"`
	TextMagic         TextMagicConfig         `mapstructure:"textmagic"`
	MarketingPlatform MarketingPlatformConfig `mapstructure:"marketing_platform"`
	SimpleTexting     SimpleTextingConfig     `mapstructure:"simpletexting"`
	AMQP              AMQPConfig              `mapstructure:"amqp"`
	Kafka             KafkaConfig             `mapstructure:"kafka"`
	SMTP              SMTPConfig              `mapstructure:"smtp"`

	EmailPolicy EmailPolicyConfig `mapstructure:"email_policy"`
	PhonePolicy PhonePolicyConfig `mapstructure:"phone_policy"`

	DefaultProfile Profile            `mapstructure:"default_profile"`
	Profiles       map[string]Profile `mapstructure:"profiles"`
}

type SendGridConfig struct {
	APIKey           string `mapstructure:"api_key"`
	ValidationAPIKey string `mapstructure:"validation_api_key"`
	BaseURL          string `mapstructure:"base_url"`
}

type BrevoConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type TextMagicConfig struct {
	Username string `mapstructure:"username"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

type MarketingPlatformConfig struct {
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	BaseURL  string `mapstructure:"base_url"`
}

type SimpleTextingConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type AMQPConfig struct {
	URL string `mapstructure:"url"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type SMTPConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	User     string   `mapstructure:"user"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type EmailPolicyConfig struct {
	AdmitWhenUnconfigured bool     `mapstructure:"admit_when_unconfigured"`
	AdmitOnAPIError       bool     `mapstructure:"admit_on_api_error"`
	AdmitOnNetworkError   bool     `mapstructure:"admit_on_network_error"`
	HardBlock             bool     `mapstructure:"hard_block"`
	MinScore              float64  `mapstructure:"min_score"`
	AllowedVerdicts       []string `mapstructure:"allowed_verdicts"`
}

type PhonePolicyConfig struct {
	AdmitWhenUnconfigured bool `mapstructure:"admit_when_unconfigured"`
	AdmitOnFailure        bool `mapstructure:"admit_on_failure"`
	AllowVoIP             bool `mapstructure:"allow_voip"`
	AdmitAmbiguous        bool `mapstructure:"admit_ambiguous"`
}

// Profile is one deployment variant: which targets run and which lists
// they write to.
type Profile struct {
	Targets                       []string `mapstructure:"targets"`
	PhoneCountry                  string   `mapstructure:"phone_country"`
	SendGridListIDs               []string `mapstructure:"sendgrid_list_ids"`
	SendGridScoreFieldID          string   `mapstructure:"sendgrid_score_field_id"`
	BrevoListIDs                  []int64  `mapstructure:"brevo_list_ids"`
	BrevoMinScore                 float64  `mapstructure:"brevo_min_score"`
	MarketingPlatformListID       string   `mapstructure:"marketing_platform_list_id"`
	MarketingPlatformMobilePrefix string   `mapstructure:"marketing_platform_mobile_prefix"`
	MarketingPlatformScoreFieldID string   `mapstructure:"marketing_platform_score_field_id"`
	SimpleTextingListIDs          []string `mapstructure:"simpletexting_list_ids"`
}

// Enabled reports whether the profile lists the target.
func (p Profile) Enabled(target string) bool {
	for _, t := range p.Targets {
		if strings.EqualFold(strings.TrimSpace(t), target) {
			return true
		}
	}
	return false
}

// envBindings maps config keys to environment variables. The first
// variable wins; later ones are legacy names.
var envBindings = map[string][]string{
	"port":            {"PORT"},
	"log_level":       {"LOG_LEVEL"},
	"call_timeout":    {"CALL_TIMEOUT"},
	"email_validator": {"EMAIL_VALIDATOR"},
	"cors_origins":    {"CORS_ORIGINS"},

	"sendgrid.api_key":            {"SENDGRID_API_KEY", "API_KEY"},
	"sendgrid.validation_api_key": {"SENDGRID_VALIDATION_API_KEY"},
	"sendgrid.base_url":           {"SENDGRID_BASE_URL"},

	"brevo.api_key":  {"BREVO_API_KEY"},
	"brevo.base_url": {"BREVO_BASE_URL"},

	"textmagic.username": {"TEXTMAGIC_USERNAME"},
	"textmagic.api_key":  {"TEXTMAGIC_API_KEY"},
	"textmagic.base_url": {"TEXTMAGIC_BASE_URL"},

	"marketing_platform.username": {"MARKETING_API_USERNAME"},
	"marketing_platform.token":    {"MARKETING_API_TOKEN", "APIMP_KEY"},
	"marketing_platform.base_url": {"MARKETING_API_BASE_URL"},

	"simpletexting.token":    {"SIMPLETEXTING_TOKEN", "SIMPLETEXTING_API_TOKEN"},
	"simpletexting.base_url": {"SIMPLETEXTING_BASE_URL"},

	"amqp.url": {"AMQP_URL"},

	"kafka.brokers": {"KAFKA_BROKERS"},
	"kafka.topic":   {"KAFKA_TOPIC"},

	"smtp.host":     {"MAIL_HOST"},
	"smtp.port":     {"MAIL_PORT"},
	"smtp.user":     {"MAIL_USER"},
	"smtp.password": {"MAIL_PASS"},
	"smtp.from":     {"MAIL_FROM"},
	"smtp.to":       {"LEAD_ALERT_TO"},

	"email_policy.admit_when_unconfigured": {"EMAIL_ADMIT_WHEN_UNCONFIGURED"},
	"email_policy.admit_on_api_error":      {"EMAIL_ADMIT_ON_API_ERROR"},
	"email_policy.admit_on_network_error":  {"EMAIL_ADMIT_ON_NETWORK_ERROR"},
	"email_policy.hard_block":              {"EMAIL_HARD_BLOCK"},
	"email_policy.min_score":               {"EMAIL_MIN_SCORE"},
	"email_policy.allowed_verdicts":        {"EMAIL_ALLOWED_VERDICTS"},

	"phone_policy.admit_when_unconfigured": {"PHONE_ADMIT_WHEN_UNCONFIGURED"},
	"phone_policy.admit_on_failure":        {"PHONE_ADMIT_ON_FAILURE"},
	"phone_policy.allow_voip":              {"PHONE_ALLOW_VOIP"},
	"phone_policy.admit_ambiguous":         {"PHONE_ADMIT_AMBIGUOUS"},

	"default_profile.targets":                           {"TARGETS"},
	"default_profile.phone_country":                     {"PHONE_COUNTRY"},
	"default_profile.sendgrid_list_ids":                 {"SENDGRID_LIST_IDS", "SENDGRID_LIST_ID"},
	"default_profile.sendgrid_score_field_id":           {"SENDGRID_SCORE_FIELD_ID"},
	"default_profile.brevo_list_ids":                    {"BREVO_LIST_IDS", "BREVO_LIST_ID"},
	"default_profile.brevo_min_score":                   {"BREVO_MIN_SCORE"},
	"default_profile.marketing_platform_list_id":        {"MARKETING_PLATFORM_LIST_ID"},
	"default_profile.marketing_platform_mobile_prefix":  {"MARKETING_PLATFORM_MOBILE_PREFIX"},
	"default_profile.marketing_platform_score_field_id": {"MARKETING_PLATFORM_SCORE_FIELD_ID"},
	"default_profile.simpletexting_list_ids":            {"SIMPLETEXTING_LIST_IDS"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("call_timeout", 8*time.Second)
	v.SetDefault("email_validator", "sendgrid")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("smtp.port", 587)
	v.SetDefault("kafka.topic", "leads.submitted")

	v.SetDefault("email_policy.admit_when_unconfigured", true)
	v.SetDefault("email_policy.admit_on_api_error", false)
	v.SetDefault("email_policy.admit_on_network_error", false)
	v.SetDefault("email_policy.hard_block", true)
	v.SetDefault("email_policy.min_score", 0.50)
	v.SetDefault("email_policy.allowed_verdicts", []string{"Valid", "Risky", "Unknown"})

	v.SetDefault("phone_policy.admit_when_unconfigured", true)
	v.SetDefault("phone_policy.admit_on_failure", false)
	v.SetDefault("phone_policy.allow_voip", true)
	v.SetDefault("phone_policy.admit_ambiguous", true)

	v.SetDefault("default_profile.targets", AllTargets)
}

// Load reads .env (if present), the environment and an optional YAML
// profiles file. configPath may be empty; LEADS_CONFIG is used then, and
// finally ./leads.yaml if it exists. An explicit path must exist.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if configPath == "" {
		configPath = os.Getenv("LEADS_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("leads")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	normalized := make(map[string]Profile, len(c.Profiles)+1)
	for name, p := range c.Profiles {
		if len(p.Targets) == 0 {
			p.Targets = AllTargets
		}
		p.Targets = normalizeTargets(p.Targets)
		normalized[strings.ToLower(name)] = p
	}
	if _, ok := normalized[DefaultProfile]; !ok {
		def := c.DefaultProfile
		def.Targets = normalizeTargets(def.Targets)
		normalized[DefaultProfile] = def
	}
	c.Profiles = normalized

	for name, p := range c.Profiles {
		for _, t := range p.Targets {
			if !knownTarget(t) {
				return fmt.Errorf("profile %q: unknown target %q", name, t)
			}
		}
		if p.BrevoMinScore < 0 || p.BrevoMinScore > 1 {
			return fmt.Errorf("profile %q: brevo_min_score must be within [0,1]", name)
		}
	}

	if c.EmailPolicy.MinScore < 0 || c.EmailPolicy.MinScore > 1 {
		return fmt.Errorf("email_policy.min_score must be within [0,1]")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive")
	}

	switch strings.ToLower(c.EmailValidator) {
	case "sendgrid", "textmagic", "none":
		c.EmailValidator = strings.ToLower(c.EmailValidator)
	default:
		return fmt.Errorf("email_validator must be sendgrid, textmagic or none, got %q", c.EmailValidator)
	}
	return nil
}

func normalizeTargets(targets []string) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func knownTarget(name string) bool {
	for _, t := range AllTargets {
		if strings.EqualFold(strings.TrimSpace(name), t) {
			return true
		}
	}
	return false
}

// Profile looks up a deployment profile by name, case-insensitively.
func (c Config) Profile(name string) (Profile, bool) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := c.Profiles[strings.ToLower(name)]
	return p, ok
}
