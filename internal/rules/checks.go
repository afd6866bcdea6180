package rules

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensource-agents/kestrel/internal/domain"
)

// CheckEngine evaluates custom CEL checks against scored results.
// Expressions are compiled once at load time.
type CheckEngine struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled []*compiledCheck
}

type compiledCheck struct {
	cfg     domain.CheckConfig
	program cel.Program
}

// NewCheckEngine creates a check engine with the scored-result variables
// available to expressions.
func NewCheckEngine() (*CheckEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("agent_id", cel.StringType),
		cel.Variable("risk", cel.IntType),
		cel.Variable("risk_level", cel.StringType),
		cel.Variable("price_claim", cel.BoolType),
		cel.Variable("legal_claim", cel.BoolType),
		cel.Variable("stop_triggered", cel.BoolType),
		cel.Variable("placeholder_used", cel.BoolType),
		cel.Variable("violation_count", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &CheckEngine{env: env}, nil
}

// ValidateCheck compiles a check without loading it.
func (e *CheckEngine) ValidateCheck(cfg *domain.CheckConfig) error {
	if cfg == nil {
		return fmt.Errorf("check config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileCheck(*cfg)
	return err
}

// LoadChecks compiles and loads all enabled checks, replacing any
// previously loaded set.
func (e *CheckEngine) LoadChecks(cfgs []domain.CheckConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	loaded := make([]*compiledCheck, 0, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		compiled, err := e.compileCheck(cfg)
		if err != nil {
			return err
		}
		loaded = append(loaded, compiled)
	}

	e.compiled = loaded
	return nil
}

// ChecksCount returns the number of loaded checks.
func (e *CheckEngine) ChecksCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiled)
}

// EvaluateAll runs every loaded check against a scored result and returns
// the messages of the checks that fired, in load order. An expression that
// fails to evaluate is logged and skipped; one broken check must not take
// down the scoring of an otherwise valid log.
func (e *CheckEngine) EvaluateAll(res *domain.ScoreResult) []string {
	e.mu.RLock()
	checks := e.compiled
	e.mu.RUnlock()

	if len(checks) == 0 {
		return nil
	}

	activation := map[string]any{
		"agent_id":         res.AgentID,
		"risk":             int64(res.Risk),
		"risk_level":       res.RiskLevel.String(),
		"price_claim":      res.PriceClaim,
		"legal_claim":      res.LegalClaim,
		"stop_triggered":   res.StopTriggered,
		"placeholder_used": res.PlaceholderUsed,
		"violation_count":  int64(len(res.Violations)),
	}

	var fired []string
	for _, check := range checks {
		out, _, err := check.program.Eval(activation)
		if err != nil {
			slog.Warn("check evaluation failed",
				"check", check.cfg.Name,
				"error", err,
			)
			continue
		}
		if out == types.True {
			fired = append(fired, check.message())
		}
	}
	return fired
}

func (c *compiledCheck) message() string {
	if c.cfg.Message != "" {
		return c.cfg.Message
	}
	return "Check: " + c.cfg.Name
}

func (e *CheckEngine) compileCheck(cfg domain.CheckConfig) (*compiledCheck, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("check name is required")
	}

	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile check %s: %w", cfg.Name, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("check %s: expression must return bool, got %s", cfg.Name, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for check %s: %w", cfg.Name, err)
	}

	return &compiledCheck{cfg: cfg, program: program}, nil
}
