package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultProviderTimeout is how long a provider may take before its result is
// dropped from the request.
const DefaultProviderTimeout = 5000 * time.Millisecond

// ErrInvalidCursor is returned for requests with a negative cursor position.
var ErrInvalidCursor = errors.New("cursor position must not be negative")

// Configuration is the configuration the engine reads on every request.
type Configuration interface {
	// EnabledProviders maps provider ids to whether they may run. Providers
	// missing from the map do not run.
	EnabledProviders() map[string]bool
	// CDPathMode controls $CDPATH completions for `cd`.
	CDPathMode() CDPathMode
}

// Request is one completion request.
type Request struct {
	PromptValue              string
	CursorPosition           int
	AllowFallbackCompletions bool
	ShellType                ShellType
	Capabilities             Capabilities

	// TriggerCharacter is set when typing a character triggered the request.
	TriggerCharacter string
	// SkipExtensionCompletions restricts the request to builtin providers and
	// bypasses the per-provider configuration.
	SkipExtensionCompletions bool
}

// Validate reports whether the request can be served.
func (r Request) Validate() error {
	if r.CursorPosition < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCursor, r.CursorPosition)
	}
	return nil
}

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Registry      *Registry
	Configuration Configuration
	FileService   FileService
	Scorer        Scorer

	// ProviderTimeout overrides DefaultProviderTimeout.
	ProviderTimeout time.Duration

	// ProcessEnv is the environment used when the shell does not report one.
	ProcessEnv EnvLookup

	Ranking RankingOptions

	Logger *zap.Logger
}

// Service selects the providers for a request, collects their completions
// concurrently and expands resource requests into path completions.
type Service struct {
	registry *Registry
	config   Configuration
	resolver *ResourceResolver
	scorer   Scorer
	timeout  time.Duration
	ranking  RankingOptions
	logger   *zap.Logger
}

// NewService creates a Service. A nil Registry gets a fresh one.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = FuzzyScorer{}
	}
	timeout := cfg.ProviderTimeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	return &Service{
		registry: registry,
		config:   cfg.Configuration,
		resolver: NewResourceResolver(ResourceResolverConfig{
			FileService:   cfg.FileService,
			Configuration: cfg.Configuration,
			ProcessEnv:    cfg.ProcessEnv,
			Logger:        logger,
		}),
		scorer:  scorer,
		timeout: timeout,
		ranking: cfg.Ranking,
		logger:  logger,
	}
}

// Registry returns the registry the service draws providers from.
func (s *Service) Registry() *Registry {
	return s.registry
}

// RegisterProvider registers a provider with the service's registry.
func (s *Service) RegisterProvider(namespace, id string, provider Provider, triggerCharacters ...string) Disposable {
	return s.registry.Register(namespace, id, provider, triggerCharacters...)
}

// ProvideCompletions collects the raw completions of every applicable
// provider. It returns false when the request is invalid or no provider is
// allowed to run.
func (s *Service) ProvideCompletions(ctx context.Context, req Request) ([]RawCompletion, bool) {
	if err := req.Validate(); err != nil {
		s.logger.Debug("ignoring completion request", zap.Error(err))
		return nil, false
	}
	req.CursorPosition = clampCursor(req.PromptValue, req.CursorPosition)

	providers := s.selectProviders(req)
	if len(providers) == 0 {
		return nil, false
	}

	s.logger.Debug("collecting completions",
		zap.Int("providers", len(providers)),
		zap.String("shellType", string(req.ShellType)),
		zap.String("triggerCharacter", req.TriggerCharacter))

	results := make([][]RawCompletion, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Debug("provider contributed no completions",
						zap.String("provider", p.ID),
						zap.String("namespace", p.Namespace),
						zap.Any("panic", r))
				}
			}()
			results[i] = s.collect(ctx, p, req)
			return nil
		})
	}
	_ = g.Wait()

	return lo.Flatten(results), true
}

// Complete runs a request and returns its completions in rank order.
func (s *Service) Complete(ctx context.Context, req Request) (CompletionList, bool) {
	raw, ok := s.ProvideCompletions(ctx, req)
	if !ok {
		return nil, false
	}
	line := NewLineContext(req.PromptValue, req.CursorPosition)
	items := lo.Map(raw, func(c RawCompletion, _ int) *Item {
		return NewItem(c, line, s.scorer)
	})
	return NewRankingModel(items, line, s.ranking).Items(), true
}

// CompletionList is the ranked output of a request.
type CompletionList []*Item

func (s *Service) selectProviders(req Request) []*RegisteredProvider {
	providers := s.registry.Providers()

	if req.TriggerCharacter != "" {
		before := req.PromptValue[:req.CursorPosition]
		providers = lo.Filter(providers, func(p *RegisteredProvider, _ int) bool {
			return lo.ContainsBy(p.TriggerCharacters, func(tc string) bool {
				return tc != "" && strings.HasSuffix(before, tc)
			})
		})
	}

	if req.SkipExtensionCompletions {
		return lo.Filter(providers, func(p *RegisteredProvider, _ int) bool {
			return p.IsBuiltin()
		})
	}

	var enabled map[string]bool
	if s.config != nil {
		enabled = s.config.EnabledProviders()
	}
	return lo.Filter(providers, func(p *RegisteredProvider, _ int) bool {
		on, ok := enabled[p.ID]
		return ok && on
	})
}

type providerOutcome struct {
	result Result
	err    error
}

// collect runs one provider under the timeout and normalizes its result. A
// provider that fails, panics or runs out of time contributes nothing.
func (s *Service) collect(ctx context.Context, p *RegisteredProvider, req Request) []RawCompletion {
	if !p.servesShell(req.ShellType) {
		return nil
	}

	result, err := s.call(ctx, p, req)
	if err != nil {
		s.logger.Debug("provider contributed no completions",
			zap.String("provider", p.ID),
			zap.String("namespace", p.Namespace),
			zap.Error(err))
		return nil
	}

	var items []RawCompletion
	var resourceRequest *ResourceRequestConfig
	switch r := result.(type) {
	case nil:
		return nil
	case Items:
		items = r
	case ItemsWithResources:
		items = r.Items
		resourceRequest = r.ResourceRequest
	case *ItemsWithResources:
		if r == nil {
			return nil
		}
		items = r.Items
		resourceRequest = r.ResourceRequest
	}

	rules := rulesFor(req.ShellType)
	builtin := p.IsBuiltin()
	out := make([]RawCompletion, 0, len(items))
	for _, item := range items {
		rules.markFileOverride(&item)
		if builtin && item.Provider == "" {
			item.Provider = p.ID
		}
		out = append(out, item)
	}

	if resourceRequest != nil {
		out = append(out, s.resolver.Resolve(ctx, *resourceRequest, req.PromptValue, req.CursorPosition, p.ID, req.Capabilities, req.ShellType)...)
	}
	return out
}

// call races the provider against the timeout. The provider goroutine is not
// interrupted when the race is lost; its result is discarded.
func (s *Service) call(ctx context.Context, p *RegisteredProvider, req Request) (Result, error) {
	done := make(chan providerOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- providerOutcome{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		result, err := p.ProvideCompletions(ctx, req.PromptValue, req.CursorPosition, req.AllowFallbackCompletions)
		done <- providerOutcome{result: result, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out.result, out.err
	case <-timer.C:
		return nil, fmt.Errorf("provider timed out after %s", s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
