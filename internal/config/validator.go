package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vyrodovalexey/avaroute/internal/router"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// rewritePlaceholder matches {name} and {*name} in rewrite templates.
var rewritePlaceholder = regexp.MustCompile(`\{\*?([^{}*/]+)\}`)

// ValidationError is a single configuration problem.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

type validator struct {
	errors ValidationErrors
}

func (v *validator) addError(path, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfig checks cfg and returns a *util.ConfigError wrapping
// ValidationErrors when anything is wrong.
func ValidateConfig(cfg *GatewayConfig) error {
	if cfg == nil {
		return util.NewConfigError("", "configuration is nil")
	}

	v := &validator{}
	v.validateListener(cfg.Listener)
	v.validateRoutes(cfg.Routes)
	v.validateRateLimit(cfg.RateLimit, cfg.Redis)
	v.validateObservability(cfg.Observability)

	if len(v.errors) > 0 {
		return util.NewConfigErrorWithCause("", "validation failed", v.errors)
	}
	return nil
}

func (v *validator) validateListener(l Listener) {
	if err := util.ValidatePort(l.Port); err != nil {
		v.addError("listener.port", "%v", err)
	}
}

func (v *validator) validateRoutes(routes []Route) {
	if len(routes) == 0 {
		v.addError("routes", "at least one route is required")
		return
	}

	names := make(map[string]struct{}, len(routes))
	for i, r := range routes {
		path := fmt.Sprintf("routes[%d]", i)

		if r.Name == "" {
			v.addError(path+".name", "name is required")
		} else if _, dup := names[r.Name]; dup {
			v.addError(path+".name", "duplicate route name %q", r.Name)
		} else {
			names[r.Name] = struct{}{}
		}

		for j, m := range r.Methods {
			if _, err := router.ParseMethod(m); err != nil {
				v.addError(fmt.Sprintf("%s.methods[%d]", path, j), "%v", err)
			}
		}

		segments, err := router.ParsePattern(r.Path)
		if err != nil {
			v.addError(path+".path", "%v", err)
		}
		if r.Path == "" {
			v.addError(path+".path", "path is required")
		}

		v.validateTarget(path, r)
		if err == nil {
			v.validateRewrite(path, r.Rewrite, segments)
		}
	}
}

func (v *validator) validateTarget(path string, r Route) {
	hasBackend := r.Backend != ""
	hasDirect := r.DirectResponse != nil

	switch {
	case hasBackend && hasDirect:
		v.addError(path, "backend and directResponse are mutually exclusive")
	case !hasBackend && !hasDirect:
		v.addError(path, "one of backend or directResponse is required")
	case hasBackend:
		if err := util.ValidateURL(r.Backend); err != nil {
			v.addError(path+".backend", "%v", err)
		}
	case hasDirect:
		if err := util.ValidateHTTPStatusCode(r.DirectResponse.Status); err != nil {
			v.addError(path+".directResponse.status", "%v", err)
		}
		for name := range r.DirectResponse.Headers {
			if err := util.ValidateHeaderName(name); err != nil {
				v.addError(path+".directResponse.headers", "%v", err)
			}
		}
	}

	if r.Rewrite != "" && !hasBackend {
		v.addError(path+".rewrite", "rewrite requires a backend")
	}
}

// validateRewrite requires every placeholder in the template to be bound
// by the route pattern.
func (v *validator) validateRewrite(path, rewrite string, segments []router.Segment) {
	if rewrite == "" {
		return
	}
	if !strings.HasPrefix(rewrite, "/") {
		v.addError(path+".rewrite", "rewrite must start with /")
	}

	bound := make(map[string]struct{}, len(segments))
	for _, s := range segments {
		if s.Kind != router.SegmentStatic {
			bound[s.Value] = struct{}{}
		}
	}

	for _, m := range rewritePlaceholder.FindAllStringSubmatch(rewrite, -1) {
		if _, ok := bound[m[1]]; !ok {
			v.addError(path+".rewrite", "placeholder %q is not bound by the path", m[0])
		}
	}
}

func (v *validator) validateRateLimit(rl *RateLimitConfig, redis *RedisConfig) {
	if rl == nil || !rl.Enabled {
		return
	}

	switch rl.Algorithm {
	case AlgorithmTokenBucket, AlgorithmFixedWindow:
	default:
		v.addError("rateLimit.algorithm", "unknown algorithm %q", rl.Algorithm)
	}

	if rl.Requests <= 0 {
		v.addError("rateLimit.requests", "requests must be positive")
	}
	if rl.Window <= 0 {
		v.addError("rateLimit.window", "window must be positive")
	}

	switch rl.Store {
	case StoreMemory:
	case StoreRedis:
		if redis == nil || redis.Address == "" {
			v.addError("redis.address", "redis address is required for the redis store")
		}
	default:
		v.addError("rateLimit.store", "unknown store %q", rl.Store)
	}
}

func (v *validator) validateObservability(o ObservabilityConfig) {
	switch strings.ToLower(o.Logging.Level) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		v.addError("observability.logging.level", "unknown level %q", o.Logging.Level)
	}

	switch o.Logging.Format {
	case "", "json", "console":
	default:
		v.addError("observability.logging.format", "unknown format %q", o.Logging.Format)
	}

	if o.Metrics.Enabled {
		if err := util.ValidatePort(o.Metrics.Port); err != nil {
			v.addError("observability.metrics.port", "%v", err)
		}
		if !strings.HasPrefix(o.Metrics.Path, "/") {
			v.addError("observability.metrics.path", "path must start with /")
		}
	}

	if o.Tracing.SamplingRate < 0 || o.Tracing.SamplingRate > 1 {
		v.addError("observability.tracing.samplingRate", "sampling rate must be within [0, 1]")
	}
}
