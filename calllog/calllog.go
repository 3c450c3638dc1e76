// calllog/calllog.go

package calllog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/retailhq/console/logging"
)

// Level classifies a recorded call. Severity ordering is fixed:
// debug < info < warn < error.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func (l Level) severity() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// ParseLevel maps a level name to a Level, rejecting unknown names.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s), nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// LevelForStatus derives the entry level from an HTTP status code:
// >=400 is error, 3xx is warn, everything else is info.
func LevelForStatus(status int) Level {
	switch {
	case status >= 400:
		return LevelError
	case status >= 300:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// Entry is one recorded API call half (request, response, or error).
// Only Method and URL are expected to be present; viewers must tolerate
// missing fields.
type Entry struct {
	Timestamp       time.Time         `json:"timestamp"`
	Level           Level             `json:"level"`
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	Status          int               `json:"status,omitempty"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
	DurationMS      int64             `json:"duration_ms,omitempty"`
	Error           string            `json:"error,omitempty"`
	UserID          string            `json:"user_id,omitempty"`
	SessionID       string            `json:"session_id,omitempty"`
}

const approxBytesPerEntry = 2048

// Config holds the logger settings. MaxEntries is derived from MaxSizeMB
// and an approximate per-entry size; changing MinLevel only affects future
// echo decisions, never stored entries.
type Config struct {
	Enabled       bool  `json:"enabled"`
	MinLevel      Level `json:"min_level"`
	EchoToConsole bool  `json:"echo_to_console"`
	MaxSizeMB     int   `json:"max_size_mb"`
	MaxEntries    int   `json:"max_entries"`
}

// ConfigPatch is a shallow overlay for Configure; nil fields are left
// untouched.
type ConfigPatch struct {
	Enabled       *bool  `json:"enabled,omitempty"`
	MinLevel      *Level `json:"min_level,omitempty"`
	EchoToConsole *bool  `json:"echo_to_console,omitempty"`
	MaxSizeMB     *int   `json:"max_size_mb,omitempty"`
}

func DefaultConfig() Config {
	return withDerived(Config{
		Enabled:       true,
		MinLevel:      LevelDebug,
		EchoToConsole: true,
		MaxSizeMB:     5,
	})
}

func withDerived(cfg Config) Config {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 5
	}
	cfg.MaxEntries = cfg.MaxSizeMB * 1024 * 1024 / approxBytesPerEntry
	return cfg
}

// Logger is a bounded FIFO record of API traffic. Oldest entries are
// silently discarded once the bound is exceeded. Readers get copies.
type Logger struct {
	mu      sync.Mutex
	cfg     Config
	entries []Entry
}

func New(cfg Config) *Logger {
	return &Logger{cfg: withDerived(cfg)}
}

// Record appends a fully-formed entry. It never panics and never fails;
// logging must not break the caller's request path.
func (l *Logger) Record(e Entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Call logger record panicked", zap.Any("panic", r))
		}
	}()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
	// Stored entries own their header maps; callers may reuse theirs.
	e.RequestHeaders = cloneHeaders(e.RequestHeaders)
	e.ResponseHeaders = cloneHeaders(e.ResponseHeaders)

	cfg, stored := l.append(e)
	if stored && cfg.EchoToConsole && e.Level.severity() >= cfg.MinLevel.severity() {
		l.echo(e)
	}
}

func (l *Logger) append(e Entry) (Config, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cfg.Enabled {
		return l.cfg, false
	}
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.cfg.MaxEntries; over > 0 {
		l.entries = append([]Entry(nil), l.entries[over:]...)
	}
	return l.cfg, true
}

func (l *Logger) echo(e Entry) {
	fields := []zap.Field{
		zap.String("method", e.Method),
		zap.String("url", e.URL),
	}
	if e.Status != 0 {
		fields = append(fields, zap.Int("status", e.Status))
	}
	if e.DurationMS != 0 {
		fields = append(fields, zap.Int64("durationMs", e.DurationMS))
	}
	if e.RequestBody != "" {
		fields = append(fields, zap.String("requestBody", e.RequestBody))
	}
	if e.ResponseBody != "" {
		fields = append(fields, zap.String("responseBody", e.ResponseBody))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}

	switch e.Level {
	case LevelError:
		logger.Error("API call", fields...)
	case LevelWarn:
		logger.Warn("API call", fields...)
	case LevelDebug:
		logger.Debug("API call", fields...)
	default:
		logger.Info("API call", fields...)
	}
}

// LogRequest records the outbound half of a call before the response is
// known. Level defaults to info.
func (l *Logger) LogRequest(method, url string, headers map[string]string, body any, userID, sessionID string) {
	l.Record(Entry{
		Level:          LevelInfo,
		Method:         method,
		URL:            url,
		RequestHeaders: headers,
		RequestBody:    stringifyBody(body),
		UserID:         userID,
		SessionID:      sessionID,
	})
}

// LogResponse records the inbound half of a call, deriving the level from
// the status code.
func (l *Logger) LogResponse(method, url string, status int, headers map[string]string, body any, duration time.Duration, userID, sessionID string) {
	l.Record(Entry{
		Level:           LevelForStatus(status),
		Method:          method,
		URL:             url,
		Status:          status,
		ResponseHeaders: headers,
		ResponseBody:    stringifyBody(body),
		DurationMS:      duration.Milliseconds(),
		UserID:          userID,
		SessionID:       sessionID,
	})
}

// LogError records a failed call with no status.
func (l *Logger) LogError(method, url, errMsg string, userID, sessionID string) {
	l.Record(Entry{
		Level:     LevelError,
		Method:    method,
		URL:       url,
		Error:     errMsg,
		UserID:    userID,
		SessionID: sessionID,
	})
}

// GetAll returns the retained entries oldest first, as copies. Header
// maps are cloned too; mutating a returned entry never touches history.
func (l *Logger) GetAll() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		e.RequestHeaders = cloneHeaders(e.RequestHeaders)
		e.ResponseHeaders = cloneHeaders(e.ResponseHeaders)
		out[i] = e
	}
	return out
}

// GetByLevel filters GetAll by exact level match.
func (l *Logger) GetByLevel(level Level) []Entry {
	all := l.GetAll()
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Clear empties the buffer. The config is untouched.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Configure merges the patch shallowly over the current config.
func (l *Logger) Configure(patch ConfigPatch) Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	if patch.Enabled != nil {
		l.cfg.Enabled = *patch.Enabled
	}
	if patch.MinLevel != nil {
		l.cfg.MinLevel = *patch.MinLevel
	}
	if patch.EchoToConsole != nil {
		l.cfg.EchoToConsole = *patch.EchoToConsole
	}
	if patch.MaxSizeMB != nil {
		l.cfg.MaxSizeMB = *patch.MaxSizeMB
	}
	l.cfg = withDerived(l.cfg)
	return l.cfg
}

func (l *Logger) GetConfig() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// stringifyBody renders a body for storage and search. A body that cannot
// be serialized degrades to a placeholder rather than failing the record;
// that includes custom marshalers that panic.
func stringifyBody(body any) (s string) {
	defer func() {
		if recover() != nil {
			s = "[unserializable body]"
		}
	}()

	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	case []byte:
		return string(b)
	case json.RawMessage:
		return string(b)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "[unserializable body]"
	}
	return string(raw)
}
