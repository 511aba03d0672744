// Package logbridge forwards every record emitted through the process-wide logger to a single external sink.
//
// The process-wide logger is the charmbracelet/log default. [Install] replaces it with a JSON-formatted,
// caller-reporting logger whose output is written into a [Bridge]. The bridge decodes each record and calls the
// [Sink] with the record's level, logger name (the logger prefix), source line, and formatted message.
//
// Forwarding is synchronous and best-effort: there is no buffering and no retry. A sink that returns an error or
// panics never affects the call site that logged; the first failure is reported once on the fallback writer
// (stderr by default) and later failures are dropped silently.
//
// Sinks must not log through the bridged logger themselves; the logger holds its lock while the sink runs.
package logbridge
