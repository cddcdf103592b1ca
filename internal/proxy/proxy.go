package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/util"
)

// Backend proxies requests to a single upstream base URL.
type Backend struct {
	name      string
	target    *url.URL
	rewrite   string
	timeout   time.Duration
	logger    observability.Logger
	tracer    *observability.Tracer
	transport http.RoundTripper
	proxy     *httputil.ReverseProxy
}

// ProxyOption is a functional option for configuring a Backend.
type ProxyOption func(*Backend)

// WithProxyLogger sets the logger for the proxy.
func WithProxyLogger(logger observability.Logger) ProxyOption {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithTransport sets the transport for the proxy.
func WithTransport(transport http.RoundTripper) ProxyOption {
	return func(b *Backend) {
		b.transport = transport
	}
}

// WithRewrite sets the outbound path template.
func WithRewrite(template string) ProxyOption {
	return func(b *Backend) {
		b.rewrite = template
	}
}

// WithTimeout bounds each proxied request. Zero disables the bound.
func WithTimeout(timeout time.Duration) ProxyOption {
	return func(b *Backend) {
		b.timeout = timeout
	}
}

// WithTracer propagates the trace context of the inbound request.
func WithTracer(tracer *observability.Tracer) ProxyOption {
	return func(b *Backend) {
		b.tracer = tracer
	}
}

// NewBackend creates a proxy to rawURL, which must be an absolute
// http or https URL.
func NewBackend(name, rawURL string, opts ...ProxyOption) (*Backend, error) {
	if err := util.ValidateURL(rawURL); err != nil {
		return nil, NewInvalidTargetError(name, rawURL, err)
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, NewInvalidTargetError(name, rawURL, err)
	}

	b := &Backend{
		name:   name,
		target: target,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.proxy = &httputil.ReverseProxy{
		Rewrite:       b.rewriteRequest,
		Transport:     b.transport,
		FlushInterval: -1,
		ErrorHandler:  b.handleError,
	}

	return b, nil
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return b.name
}

// Target returns the upstream base URL.
func (b *Backend) Target() string {
	return b.target.String()
}

// ServeHTTP implements http.Handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), b.timeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	b.proxy.ServeHTTP(w, r)
}

func (b *Backend) rewriteRequest(pr *httputil.ProxyRequest) {
	if b.rewrite != "" {
		params := util.PathParamsFromContext(pr.In.Context())
		pr.Out.URL.Path = ExpandRewrite(b.rewrite, params)
		pr.Out.URL.RawPath = ""
	}

	pr.SetURL(b.target)
	pr.SetXForwarded()

	if b.tracer != nil {
		b.tracer.InjectTraceContext(pr.In.Context(), pr.Out)
	}
}

func (b *Backend) handleError(w http.ResponseWriter, r *http.Request, err error) {
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(r.Context().Err(), context.DeadlineExceeded)
	perr := NewUpstreamError(b.name, b.target.String(), err, timedOut)

	b.logger.WithContext(r.Context()).Error("proxy error",
		observability.String("backend", b.name),
		observability.String("path", r.URL.Path),
		observability.String("method", r.Method),
		observability.Error(perr),
	)

	status := http.StatusBadGateway
	if timedOut {
		status = http.StatusGatewayTimeout
	}
	util.WriteJSONError(w, status, perr.Message)
}

// ExpandRewrite fills {name} and {*name} placeholders in template from
// params. Unknown placeholders are left as they are.
func ExpandRewrite(template string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(template, "{") {
		return template
	}

	pairs := make([]string, 0, len(params)*4)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", value, "{*"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
