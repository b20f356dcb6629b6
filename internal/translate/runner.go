package translate

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/prompterhq/prompter/internal/config"
	"github.com/prompterhq/prompter/internal/provider"
	"github.com/prompterhq/prompter/internal/transport"
)

// Execution is the per-call record handed back to the notebook host: the
// structured outcome plus everything it renders alongside it (which
// provider and model ran, when, for how long, with which resolved
// parameters, and what it cost in tokens).
type Execution struct {
	ID        string
	Provider  string
	Model     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Temperature float64
	MaxTokens   int
	TopP        float64

	Usage   *provider.Usage
	Outcome Outcome
}

// Runner is the entry point the notebook cell-execution host calls. It
// resolves configuration into a Translator per call and wraps every call,
// successful or not, in an Execution record so duration telemetry is
// never lost.
type Runner struct {
	cfg    *config.Config
	client *transport.Client
	logger *log.Logger
}

// RunnerOption configures a Runner created with NewRunner.
type RunnerOption func(*Runner)

// WithRunnerLogger attaches a logger; it also flows to the transport for
// retry reporting.
func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTransport overrides the transport client, for tests that stub the
// network.
func WithTransport(c *transport.Client) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.client = c
		}
	}
}

// NewRunner builds a Runner from loaded configuration. The config's
// timeout lands on the http.Client; retry settings land on the transport.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = transport.New(
			transport.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			transport.WithRetry(cfg.Retry.MaxAttempts, cfg.Retry.Pause),
			transport.WithLogger(r.logger),
		)
	}
	return r
}

// translator resolves the active provider, model, endpoint, credentials,
// and generation parameters from configuration into a ready Translator.
func (r *Runner) translator() (*Translator, error) {
	profile, err := provider.Lookup(r.cfg.Provider)
	if err != nil {
		return nil, err
	}

	settings := r.cfg.ProviderSettings(profile.ID)

	// The global model wins over the per-provider one; the profile
	// default fills in when neither is set (inside NewTranslator).
	model := r.cfg.Model
	if model == "" {
		model = settings.Model
	}

	params := provider.ResolveParams(r.cfg.Temperature, r.cfg.MaxTokens, r.cfg.TopP)

	return NewTranslator(r.client, profile, model, settings.Endpoint, settings.APIKey, params)
}

// ExecuteCellPrompt runs one notebook prompt cell: a single completion
// round trip coerced into the target shape, wrapped in telemetry.
//
// The returned Execution is non-nil on every path that got far enough to
// resolve the provider, including transport and extraction failures; the
// error alongside it keeps the host's distinction between "the system
// broke" (non-nil error, render as error output) and "the model did not
// comply" (nil error, Outcome.Success false, render as warning).
func (r *Runner) ExecuteCellPrompt(ctx context.Context, prompt string, shape Shape) (*Execution, error) {
	tr, err := r.translator()
	if err != nil {
		return nil, err
	}

	exec := &Execution{
		ID:          uuid.NewString(),
		Provider:    tr.profile.ID,
		Model:       tr.Model(),
		Temperature: tr.Params().Temperature,
		MaxTokens:   tr.Params().MaxTokens,
		TopP:        tr.Params().TopP,
		StartTime:   time.Now(),
	}

	r.logger.Debug("executing cell prompt",
		"execution", exec.ID,
		"provider", exec.Provider,
		"model", exec.Model,
	)

	outcome, completion, err := tr.Translate(ctx, prompt, shape)

	exec.EndTime = time.Now()
	exec.Duration = exec.EndTime.Sub(exec.StartTime)
	exec.Outcome = outcome
	if completion != nil {
		exec.Usage = completion.Usage
		// The provider may have served a different model revision than
		// the one we asked for; report what actually ran.
		exec.Model = completion.ModelUsed
	}

	if err != nil {
		r.logger.Error("cell prompt failed",
			"execution", exec.ID,
			"duration", exec.Duration,
			"error", err,
		)
		return exec, err
	}

	r.logger.Debug("cell prompt finished",
		"execution", exec.ID,
		"duration", exec.Duration,
		"success", outcome.Success,
	)
	return exec, nil
}
