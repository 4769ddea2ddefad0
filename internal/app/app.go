package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/IBM/sarama"

	"github.com/blackbirdmedia/lead-pipeline/internal/config"
	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/http/handlers"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/brevo"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/mailplatform"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/sendgrid"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/simpletexting"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/integration/textmagic"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/mail"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/queue"
	"github.com/blackbirdmedia/lead-pipeline/internal/infra/stream"
	"github.com/blackbirdmedia/lead-pipeline/internal/usecase"
)

const (
	LeadQueueName  = "LeadQueue"
	LeadStreamName = "LeadStream"
	LeadAlertName  = "LeadAlert"
)

// Dependencies are the process-wide resources shared by every profile.
type Dependencies struct {
	Config   config.Config
	Logger   *slog.Logger
	Recorder usecase.Recorder
	// Publisher is nil when no AMQP broker is configured.
	Publisher queue.Publisher
	// Producer is nil when no Kafka brokers are configured.
	Producer sarama.SyncProducer
	// Dialer overrides the SMTP dialer; nil uses gomail's.
	Dialer     mail.Dialer
	HTTPClient *http.Client
}

// Pipelines holds one SubmitLeadUseCase per deployment profile.
type Pipelines struct {
	byProfile map[string]*usecase.SubmitLeadUseCase
	// Validators reports which validators have credentials.
	Validators map[string]bool
}

// Build wires a pipeline for every configured profile. Targets without
// credentials are left out so they never show up as failures.
func Build(deps Dependencies) (*Pipelines, error) {
	cfg := deps.Config
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.CallTimeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sg := sendgrid.NewClient(cfg.SendGrid.APIKey, cfg.SendGrid.ValidationAPIKey, cfg.SendGrid.BaseURL, httpClient)
	tm := textmagic.NewClient(cfg.TextMagic.Username, cfg.TextMagic.APIKey, cfg.TextMagic.BaseURL, httpClient)
	bv := brevo.NewClient(cfg.Brevo.APIKey, cfg.Brevo.BaseURL, httpClient)
	mp := mailplatform.NewClient(cfg.MarketingPlatform.Username, cfg.MarketingPlatform.Token, cfg.MarketingPlatform.BaseURL, httpClient)
	st := simpletexting.NewClient(cfg.SimpleTexting.Token, cfg.SimpleTexting.BaseURL, httpClient)
	smtp := mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}

	var emailValidator usecase.EmailValidator
	switch cfg.EmailValidator {
	case "sendgrid":
		emailValidator = sg
	case "textmagic":
		emailValidator = tm
	}

	p := &Pipelines{
		byProfile: make(map[string]*usecase.SubmitLeadUseCase, len(cfg.Profiles)),
		Validators: map[string]bool{
			"email": emailConfigured(cfg.EmailValidator, sg, tm),
			"phone": tm.Configured(),
		},
	}

	for name, profile := range cfg.Profiles {
		var targets []usecase.Target
		for _, t := range profile.Targets {
			target, ok := buildTarget(t, name, profile, targetClients{
				sendgrid:      sg,
				brevo:         bv,
				mailplatform:  mp,
				simpletexting: st,
				publisher:     deps.Publisher,
				producer:      deps.Producer,
				topic:         cfg.Kafka.Topic,
				smtp:          smtp,
				dialer:        deps.Dialer,
			})
			if !ok {
				logger.Warn("target disabled, credentials missing", "profile", name, "target", t)
				continue
			}
			targets = append(targets, target)
		}

		p.byProfile[name] = usecase.NewSubmitLeadUseCase(
			emailValidator,
			tm.WithCountry(profile.PhoneCountry),
			targets,
			usecase.WithEmailPolicy(EmailPolicy(cfg.EmailPolicy)),
			usecase.WithPhonePolicy(PhonePolicy(cfg.PhonePolicy)),
			usecase.WithCallTimeout(cfg.CallTimeout),
			usecase.WithRecorder(deps.Recorder),
			usecase.WithLogger(logger.With("profile", name)),
		)
		logger.Info("profile ready", "profile", name, "targets", p.byProfile[name].TargetNames())
	}

	if _, ok := p.byProfile[config.DefaultProfile]; !ok {
		return nil, fmt.Errorf("no %q profile configured", config.DefaultProfile)
	}
	return p, nil
}

// Lookup returns the pipeline for a profile name.
func (p *Pipelines) Lookup(profile string) (*usecase.SubmitLeadUseCase, bool) {
	if profile == "" {
		profile = config.DefaultProfile
	}
	uc, ok := p.byProfile[strings.ToLower(profile)]
	return uc, ok
}

// Resolve adapts Lookup for the lead handler.
func (p *Pipelines) Resolve(profile string) (handlers.LeadSubmitter, bool) {
	uc, ok := p.Lookup(profile)
	if !ok {
		return nil, false
	}
	return uc, true
}

// Targets lists the active targets per profile.
func (p *Pipelines) Targets() map[string][]string {
	out := make(map[string][]string, len(p.byProfile))
	for name, uc := range p.byProfile {
		out[name] = uc.TargetNames()
	}
	return out
}

func (p *Pipelines) Profiles() []string {
	names := make([]string, 0, len(p.byProfile))
	for name := range p.byProfile {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type targetClients struct {
	sendgrid      *sendgrid.Client
	brevo         *brevo.Client
	mailplatform  *mailplatform.Client
	simpletexting *simpletexting.Client
	publisher     queue.Publisher
	producer      sarama.SyncProducer
	topic         string
	smtp          mail.SMTPConfig
	dialer        mail.Dialer
}

func buildTarget(name, profileName string, profile config.Profile, c targetClients) (usecase.Target, bool) {
	switch name {
	case config.TargetSendGrid:
		if !c.sendgrid.ContactsConfigured() {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name:   sendgrid.ServiceName,
			Sender: sendgrid.NewContactSender(c.sendgrid, profile.SendGridListIDs, profile.SendGridScoreFieldID),
			Admit:  usecase.Always(),
		}, true

	case config.TargetBrevo:
		if !c.brevo.Configured() {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name:   brevo.ServiceName,
			Sender: brevo.NewContactSender(c.brevo, profile.BrevoListIDs),
			Admit:  usecase.MinScore(profile.BrevoMinScore),
		}, true

	case config.TargetMarketingPlatform:
		if !c.mailplatform.Configured() {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name: mailplatform.ServiceName,
			Sender: mailplatform.NewProfileSender(c.mailplatform, mailplatform.ListConfig{
				ListID:       profile.MarketingPlatformListID,
				MobilePrefix: profile.MarketingPlatformMobilePrefix,
				ScoreFieldID: profile.MarketingPlatformScoreFieldID,
			}),
			Admit: usecase.Always(),
		}, true

	case config.TargetSimpleTexting:
		if !c.simpletexting.Configured() {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name:   simpletexting.ServiceName,
			Sender: simpletexting.NewContactSender(c.simpletexting, profile.SimpleTextingListIDs),
			Admit:  usecase.RequirePhone(),
		}, true

	case config.TargetQueue:
		if c.publisher == nil {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name:   LeadQueueName,
			Sender: queue.NewLeadProducer(c.publisher, profileName),
			Admit:  usecase.Always(),
		}, true

	case config.TargetStream:
		if c.producer == nil {
			return usecase.Target{}, false
		}
		return usecase.Target{
			Name:   LeadStreamName,
			Sender: stream.NewLeadStreamer(c.producer, c.topic, profileName),
			Admit:  usecase.Always(),
		}, true

	case config.TargetAlert:
		if !c.smtp.Configured() {
			return usecase.Target{}, false
		}
		sender := mail.NewLeadAlertSender(c.smtp, profileName)
		if c.dialer != nil {
			sender = mail.NewLeadAlertSenderWithDialer(c.smtp, profileName, c.dialer)
		}
		return usecase.Target{
			Name:   LeadAlertName,
			Sender: sender,
			Admit:  usecase.EmailVerdictIn(entity.VerdictValid),
		}, true
	}
	return usecase.Target{}, false
}

func emailConfigured(provider string, sg *sendgrid.Client, tm *textmagic.Client) bool {
	switch provider {
	case "sendgrid":
		return sg.ValidationConfigured()
	case "textmagic":
		return tm.Configured()
	}
	return false
}

func EmailPolicy(c config.EmailPolicyConfig) usecase.EmailPolicy {
	verdicts := make([]entity.Verdict, 0, len(c.AllowedVerdicts))
	for _, v := range c.AllowedVerdicts {
		verdicts = append(verdicts, entity.ParseVerdict(v))
	}
	return usecase.EmailPolicy{
		AdmitWhenUnconfigured: c.AdmitWhenUnconfigured,
		AdmitOnAPIError:       c.AdmitOnAPIError,
		AdmitOnNetworkError:   c.AdmitOnNetworkError,
		HardBlock:             c.HardBlock,
		MinScore:              c.MinScore,
		AllowedVerdicts:       verdicts,
	}
}

func PhonePolicy(c config.PhonePolicyConfig) usecase.PhonePolicy {
	return usecase.PhonePolicy{
		AdmitWhenUnconfigured: c.AdmitWhenUnconfigured,
		AdmitOnFailure:        c.AdmitOnFailure,
		AllowVoIP:             c.AllowVoIP,
		AdmitAmbiguous:        c.AdmitAmbiguous,
	}
}
