package log

import (
	golog "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

// NewIPFSLogger returns a Logger backed by the go-log registry under the given subsystem name.
// The level is applied to that subsystem only; other subsystems keep the go-log defaults.
func NewIPFSLogger(name string, level Level) Logger {
	_ = golog.SetLogLevel(name, string(level))

	// Same skip as NewZapLogger.
	base := golog.Logger(name).SugaredLogger.Desugar().WithOptions(zap.AddCallerSkip(2))
	return &ZapLogger{lg: base.Sugar()}
}

// SetupIPFS configures the process-wide go-log output.
func SetupIPFS(conf Config) {
	lvl, err := golog.Parse(string(conf.Level))
	if err != nil {
		lvl = golog.LevelInfo
	}

	format := golog.ColorizedOutput
	switch conf.Format {
	case "json":
		format = golog.JSONOutput
	case "logfmt", "plaintext":
		format = golog.PlaintextOutput
	}

	golog.SetupLogging(golog.Config{
		Format: format,
		Level:  lvl,
		Stderr: conf.Output == "" || conf.Output == "stderr",
		Stdout: conf.Output == "stdout",
	})
}
