package logbridge

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// Sink receives one decoded log record.
type Sink func(level log.Level, name string, line int, message string) error

// Record is a decoded log record, as handed to a [Sink].
type Record struct {
	Level   log.Level
	Name    string
	Line    int
	Message string
}

// Bridge is an [io.Writer] that decodes JSON log records and forwards them to a [Sink].
type Bridge struct {
	sink     Sink
	level    log.Level
	fallback io.Writer

	failOnce  sync.Once
	forwarded atomic.Uint64
	failed    atomic.Uint64
}

// Option configures a [Bridge].
type Option func(*Bridge)

// WithFallback sets the writer used for the one-time sink failure diagnostic.
func WithFallback(w io.Writer) Option {
	return func(b *Bridge) {
		if w != nil {
			b.fallback = w
		}
	}
}

// WithLevel sets the minimum level of records that reach the sink.
func WithLevel(ll log.Level) Option {
	return func(b *Bridge) { b.level = ll }
}

// New creates a [Bridge] forwarding to sink without installing it.
func New(sink Sink, opts ...Option) *Bridge {
	b := &Bridge{
		sink:     sink,
		level:    log.DebugLevel,
		fallback: os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Logger returns a logger that writes its records into the bridge.
func (b *Bridge) Logger() *log.Logger {
	return log.NewWithOptions(b, log.Options{
		Level:           b.level,
		ReportCaller:    true,
		ReportTimestamp: false,
		Formatter:       log.JSONFormatter,
	})
}

// Level returns the minimum forwarded level.
func (b *Bridge) Level() log.Level {
	return b.level
}

// Forwarded returns the number of records the sink accepted.
func (b *Bridge) Forwarded() uint64 {
	return b.forwarded.Load()
}

// Failed returns the number of records the sink rejected.
func (b *Bridge) Failed() uint64 {
	return b.failed.Load()
}

// Write decodes every newline-terminated record in p and forwards it.
// It always reports success so that logging never fails at the call site.
func (b *Bridge) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		rec, ok := decode(line)
		if !ok || rec.Level < b.level {
			continue
		}
		b.forward(rec)
	}
	return len(p), nil
}

func (b *Bridge) forward(rec Record) {
	if b.sink == nil {
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panicked: %v", r)
			}
		}()
		return b.sink(rec.Level, rec.Name, rec.Line, rec.Message)
	}()

	if err == nil {
		b.forwarded.Add(1)
		return
	}

	b.failed.Add(1)
	b.failOnce.Do(func() {
		fmt.Fprintf(b.fallback, "logbridge: sink failed, further failures are suppressed: %v\n", err)
	})
}

func decode(line []byte) (Record, bool) {
	if !gjson.ValidBytes(line) {
		return Record{}, false
	}

	fields := gjson.GetManyBytes(line, log.LevelKey, log.PrefixKey, log.CallerKey, log.MessageKey)

	ll, err := log.ParseLevel(fields[0].String())
	if err != nil {
		return Record{}, false
	}

	return Record{
		Level:   ll,
		Name:    strings.TrimSuffix(strings.TrimSpace(fields[1].String()), ":"),
		Line:    callerLine(fields[2].String()),
		Message: withFields(fields[3].String(), line),
	}, true
}

// withFields appends the record's key/value pairs to msg as logfmt-style "key=value" pairs,
// in the order they were logged.
func withFields(msg string, line []byte) string {
	var sb strings.Builder
	sb.WriteString(msg)

	gjson.ParseBytes(line).ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case log.LevelKey, log.PrefixKey, log.CallerKey, log.MessageKey, log.TimestampKey:
			return true
		}
		sb.WriteByte(' ')
		sb.WriteString(k.String())
		sb.WriteByte('=')
		sb.WriteString(fieldValue(v))
		return true
	})
	return sb.String()
}

func fieldValue(v gjson.Result) string {
	if v.Type != gjson.String {
		return v.Raw
	}
	s := v.String()
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}

// callerLine extracts the line number from a "path/file.go:42" caller string.
func callerLine(caller string) int {
	idx := strings.LastIndexByte(caller, ':')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(caller[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
