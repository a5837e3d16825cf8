// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/resilience"
	"entity-pipeline/internal/security"
	"entity-pipeline/internal/version"
)

const maxResponseBytes = 8 << 20

// HTTPRecognizer posts text to a JSON entity-recognition service.
type HTTPRecognizer struct {
	cfg       Config
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *resilience.CircuitBreaker
	entities  mapset.Set[detector.Type]
	languages mapset.Set[string]
	logger    *zap.Logger
}

// Option customises an HTTPRecognizer.
type Option func(*HTTPRecognizer)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *HTTPRecognizer) { r.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *HTTPRecognizer) { r.logger = observability.OrNop(l) }
}

// NewHTTPRecognizer validates cfg and builds a recognizer for it.
func NewHTTPRecognizer(cfg Config, opts ...Option) (*HTTPRecognizer, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &HTTPRecognizer{
		cfg:       cfg,
		client:    &http.Client{},
		entities:  TypeSet(cfg.SupportedEntities),
		languages: LanguageSet(cfg.SupportedLanguages),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	limit := rate.Inf
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}
	r.limiter = rate.NewLimiter(limit, max(cfg.RateLimit.Burst, 1))

	breakerCfg := resilience.DefaultCircuitBreakerConfig("remote:" + cfg.Name)
	breakerCfg.Logger = r.logger
	r.breaker = resilience.NewCircuitBreaker(breakerCfg)
	return r, nil
}

func (r *HTTPRecognizer) Name() string   { return r.cfg.Name }
func (r *HTTPRecognizer) Config() Config { return r.cfg }

func (r *HTTPRecognizer) Supports(language string) bool {
	return SupportsLanguage(r.languages, language)
}

type analyzeRequest struct {
	Text     string   `json:"text"`
	Language string   `json:"language,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// Analyze calls the service, retrying transient failures up to RetryAttempts
// times within the configured timeout.
func (r *HTTPRecognizer) Analyze(ctx context.Context, text, language string) ([]detector.Entity, error) {
	if r.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout())
		defer cancel()
	}

	payload, err := json.Marshal(analyzeRequest{
		Text:     text,
		Language: language,
		Entities: r.cfg.SupportedEntities,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	retryCfg := resilience.RemoteRetryConfig(r.cfg.RetryAttempts)
	retryCfg.OnRetry = func(attempt int, err error) {
		r.logger.Debug("retrying remote recognizer",
			zap.String("recognizer", r.cfg.Name),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return resilience.RetryWithResult(ctx, retryCfg, func(ctx context.Context) ([]detector.Entity, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, resilience.NewPermanentError("rate limiter: "+err.Error(), err)
		}
		var found []detector.Entity
		err := r.breaker.Execute(ctx, func(ctx context.Context) error {
			body, err := r.post(ctx, payload)
			if err != nil {
				return err
			}
			found, err = r.parse(body, text)
			return err
		})
		return found, err
	})
}

func (r *HTTPRecognizer) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, resilience.NewPermanentError("building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	credential, err := security.ResolveCredential(r.cfg.CredentialRef)
	if err != nil {
		return nil, resilience.NewPermanentError("resolving credential", err)
	}
	if credential != nil {
		req.Header.Set(r.cfg.AuthHeader, credential.HeaderValue(r.cfg.AuthScheme))
		credential.Clear()
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", r.cfg.Name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s response", r.cfg.Name)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &resilience.StatusError{
			Service:    r.cfg.Name,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

// parse extracts entities from the service answer. Spans are converted to
// rune offsets; out-of-range spans are kept and left to consolidation.
func (r *HTTPRecognizer) parse(body []byte, text string) ([]detector.Entity, error) {
	if !gjson.ValidBytes(body) {
		return nil, resilience.NewPermanentError(r.cfg.Name+": response is not valid JSON", nil)
	}
	m := r.cfg.Response
	items := gjson.GetBytes(body, m.EntitiesPath)
	if !items.IsArray() {
		return nil, resilience.NewPermanentError(r.cfg.Name+": no entity array at "+m.EntitiesPath, nil)
	}

	runes := []rune(text)
	toRune := offsetConverter(text, r.cfg.OffsetUnit)
	var out []detector.Entity

	items.ForEach(func(_, item gjson.Result) bool {
		label := item.Get(m.TypeField).String()
		typ, ok := r.mapType(label)
		if !ok {
			r.logger.Debug("skipping unmapped remote label",
				zap.String("recognizer", r.cfg.Name), zap.String("label", label))
			return true
		}

		score := r.cfg.DefaultScore
		if s := item.Get(m.ScoreField); s.Exists() {
			score = min(max(s.Float(), 0), 1)
		}
		if score < r.cfg.MinScore {
			return true
		}

		start, end := toRune(int(item.Get(m.StartField).Int())), toRune(int(item.Get(m.EndField).Int()))
		e := detector.Entity{
			Type:       typ,
			Start:      start,
			End:        end,
			Confidence: score,
			Source:     detector.SourceRemoteService,
		}
		if e.Valid(len(runes)) {
			e.Text = string(runes[start:end])
		}
		e.SetMeta(detector.MetaRecognizer, r.cfg.Name)
		e.SetMeta(detector.MetaPriority, r.cfg.Priority)
		out = append(out, e)
		return true
	})
	return out, nil
}

func (r *HTTPRecognizer) mapType(label string) (detector.Type, bool) {
	if mapped, ok := r.cfg.Response.TypeMap[label]; ok {
		label = mapped
	}
	typ, err := detector.ParseType(strings.ToUpper(label))
	if err != nil {
		return "", false
	}
	if r.entities.Cardinality() > 0 && !r.entities.Contains(typ) {
		return "", false
	}
	return typ, true
}

// HealthCheck issues a GET against the health path and reports whether the
// service answered 2xx.
func (r *HTTPRecognizer) HealthCheck(ctx context.Context) bool {
	target := r.cfg.Endpoint
	if r.cfg.HealthPath != "" {
		base, err := url.Parse(r.cfg.Endpoint)
		if err != nil {
			return false
		}
		ref, err := url.Parse(r.cfg.HealthPath)
		if err != nil {
			return false
		}
		target = base.ResolveReference(ref).String()
	}

	if r.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout())
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("health check failed", zap.String("recognizer", r.cfg.Name), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// offsetConverter maps offsets in unit to rune offsets over text.
func offsetConverter(text string, unit OffsetUnit) func(int) int {
	switch unit {
	case OffsetByte:
		return func(off int) int {
			if off <= 0 {
				return off
			}
			if off > len(text) {
				return utf8.RuneCountInString(text) + off - len(text)
			}
			return utf8.RuneCountInString(text[:off])
		}
	case OffsetUTF16:
		// units[i] is the rune index of UTF-16 code unit i.
		units := make([]int, 0, len(text)+1)
		n := 0
		for _, r := range text {
			w := utf16.RuneLen(r)
			if w < 1 {
				w = 1
			}
			for range w {
				units = append(units, n)
			}
			n++
		}
		units = append(units, n)
		return func(off int) int {
			if off < 0 {
				return off
			}
			if off >= len(units) {
				return n + off - (len(units) - 1)
			}
			return units[off]
		}
	default:
		return func(off int) int { return off }
	}
}
