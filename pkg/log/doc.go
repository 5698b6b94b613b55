// Package log provides the structured logger shared by the ghost packages.
//
// Library code never owns a logger. It pulls one from the context:
//
//	lg := log.FromContext(ctx).WithName("rpc")
//	lg.Debug("calling method", "method", method, "id", id)
//
// Applications attach a backend once, near main:
//
//	lg := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx := log.SetContextLogger(context.Background(), lg)
//
// A context without a logger yields a NoopLogger, so packages can log unconditionally.
// When the context carries a valid OpenTelemetry span, SetContextLogger wraps the backend in a
// SpanLogger and every entry is also recorded as a span event.
//
// Secrets (private keys, seeds, keystore contents) must never be passed as values.
package log
