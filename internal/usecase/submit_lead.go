package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const DefaultCallTimeout = 8 * time.Second

var tracer = otel.Tracer("github.com/blackbirdmedia/lead-pipeline/internal/usecase")

// SubmitLeadUseCase validates one lead and fans it out to the configured
// targets. It holds no per-request state and is safe for concurrent use.
type SubmitLeadUseCase struct {
	emailValidator EmailValidator
	phoneValidator PhoneValidator
	emailPolicy    EmailPolicy
	phonePolicy    PhonePolicy
	targets        []Target
	callTimeout    time.Duration
	recorder       Recorder
	logger         *slog.Logger
}

type Option func(*SubmitLeadUseCase)

func WithEmailPolicy(p EmailPolicy) Option {
	return func(uc *SubmitLeadUseCase) { uc.emailPolicy = p }
}

func WithPhonePolicy(p PhonePolicy) Option {
	return func(uc *SubmitLeadUseCase) { uc.phonePolicy = p }
}

// WithCallTimeout bounds every validator and target call.
func WithCallTimeout(d time.Duration) Option {
	return func(uc *SubmitLeadUseCase) {
		if d > 0 {
			uc.callTimeout = d
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(uc *SubmitLeadUseCase) {
		if r != nil {
			uc.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(uc *SubmitLeadUseCase) {
		if l != nil {
			uc.logger = l
		}
	}
}

// NewSubmitLeadUseCase builds the pipeline. A nil validator behaves like
// one with missing credentials.
func NewSubmitLeadUseCase(
	emailValidator EmailValidator,
	phoneValidator PhoneValidator,
	targets []Target,
	opts ...Option,
) *SubmitLeadUseCase {
	uc := &SubmitLeadUseCase{
		emailValidator: emailValidator,
		phoneValidator: phoneValidator,
		emailPolicy:    DefaultEmailPolicy(),
		phonePolicy:    DefaultPhonePolicy(),
		targets:        targets,
		callTimeout:    DefaultCallTimeout,
		recorder:       noopRecorder{},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(uc)
		}
	}
	return uc
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger that replaces the
// use case's own logger for that request.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (uc *SubmitLeadUseCase) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return uc.logger
}

// TargetNames lists the configured targets in dispatch order.
func (uc *SubmitLeadUseCase) TargetNames() []string {
	names := make([]string, 0, len(uc.targets))
	for _, t := range uc.targets {
		names = append(names, t.Name)
	}
	return names
}

// Execute runs decode-validated input through validation, fan-out and
// aggregation. A rejected email returns *ValidationError and nothing is
// dispatched. Dependency failures never surface as errors; a target
// without a sender is a *TechnicalError.
func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input entity.LeadInput) (*SubmitLeadOutput, error) {
	ctx, span := tracer.Start(ctx, "SubmitLead")
	defer span.End()

	for _, t := range uc.targets {
		if t.Sender == nil {
			span.SetStatus(codes.Error, "misconfigured target")
			return nil, &TechnicalError{
				Code:    CodeInternal,
				Message: "target " + t.Name + " has no sender",
			}
		}
	}

	lead := entity.NewLead(input)
	logger := uc.loggerFor(ctx).With("email", lead.Email)

	logger.InfoContext(ctx, "validation start")
	emailOutcome := uc.validateEmail(ctx, lead.Email)
	uc.recorder.RecordValidation("email", emailOutcome)
	span.SetAttributes(attribute.String("lead.email_verdict", string(emailOutcome.Verdict)))

	if !emailOutcome.Admitted {
		logger.WarnContext(ctx, "email validation failed",
			"verdict", emailOutcome.Verdict,
			"reason", emailOutcome.Reason,
		)
		span.SetStatus(codes.Error, "email rejected")
		uc.recorder.RecordSubmission(false)
		return nil, &ValidationError{
			Field:   "email",
			Message: "Lead validation failed. Invalid email address.",
			Outcome: emailOutcome,
		}
	}
	if emailOutcome.Verdict == entity.VerdictCredentialsMissing {
		logger.WarnContext(ctx, "email validator credentials missing, skipping validation")
	}
	logger.InfoContext(ctx, "email passed the gate", "verdict", emailOutcome.Verdict)
	lead.ApplyEmailOutcome(emailOutcome)

	phoneOutcome := vacuousPhoneOutcome()
	phoneStripped := false
	if lead.HasPhone() {
		phoneOutcome = uc.validatePhone(ctx, lead)
		uc.recorder.RecordValidation("phone", phoneOutcome)
		if !phoneOutcome.Admitted {
			logger.WarnContext(ctx, "invalid phone number detected, stripping phone",
				"phone", lead.Phone,
				"verdict", phoneOutcome.Verdict,
				"reason", phoneOutcome.Reason,
			)
			lead.StripPhone()
			phoneStripped = true
		} else if phoneOutcome.Verdict == entity.VerdictUnknown {
			logger.WarnContext(ctx, "phone validation was ambiguous, allowing", "phone", lead.Phone)
		}
	}

	validation := Validation{Email: emailOutcome, Phone: phoneOutcome}
	eligible := make([]Target, 0, len(uc.targets))
	for _, t := range uc.targets {
		if t.admits(lead, validation) {
			eligible = append(eligible, t)
			continue
		}
		logger.InfoContext(ctx, "target skipped by admission predicate", "target", t.Name)
	}

	logger.InfoContext(ctx, "submitting lead",
		"targets", len(eligible),
		"phone_stripped", phoneStripped,
	)
	results := uc.dispatch(ctx, *lead, eligible)
	summary := Summarize(results, phoneStripped)
	uc.recorder.RecordSubmission(summary.Delivered)

	if !summary.Delivered {
		span.SetStatus(codes.Error, "no target accepted the lead")
	}
	logger.InfoContext(ctx, "lead processed",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	return &SubmitLeadOutput{
		Message:       summary.Message,
		Details:       results,
		PhoneStripped: phoneStripped,
		Delivered:     summary.Delivered,
		Succeeded:     summary.Succeeded,
		Failed:        summary.Failed,
		Email:         emailOutcome,
		Phone:         phoneOutcome,
	}, nil
}

func (uc *SubmitLeadUseCase) validateEmail(ctx context.Context, email string) entity.ValidationOutcome {
	if uc.emailValidator == nil {
		return uc.emailPolicy.Evaluate(nil, entity.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "ValidateEmail")
	defer span.End()

	check, err := uc.emailValidator.CheckEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
	}
	return uc.emailPolicy.Evaluate(check, err)
}

func (uc *SubmitLeadUseCase) validatePhone(ctx context.Context, lead *entity.Lead) entity.ValidationOutcome {
	if uc.phoneValidator == nil {
		return uc.phonePolicy.Evaluate(nil, entity.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "ValidatePhone")
	defer span.End()

	check, err := uc.phoneValidator.CheckPhone(ctx, lead.Phone)
	if err != nil {
		span.RecordError(err)
		return uc.phonePolicy.Evaluate(nil, err)
	}
	if check != nil && check.Type != "" {
		lead.Tags[entity.TagPhoneType] = check.Type
	}
	return uc.phonePolicy.Evaluate(check, nil)
}
