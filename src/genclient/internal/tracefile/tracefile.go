// Package tracefile provides a named, append-only text sink for raw protocol
// traces. Output goes to a temporary file whose path is published in the
// client info file so the IDE can tail the most recent session's trace.
package tracefile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/genlang/gen-lsp-client/src/genclient/internal/clientinfofile"
	"github.com/genlang/gen-lsp-client/src/genclient/internal/fs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_fmtOutputKey = "output:%s"
	_sinkName     = "gen-lsp-trace"
)

// Module is the Fx module for this package.
var Module = fx.Provide(func(p Params) (Sink, error) {
	return NewSink(p, _sinkName)
})

// Sink is an append-only trace destination.
type Sink struct {
	io.Writer

	// Name identifies the sink in the client info file.
	Name string
	// Path is the backing file, for reference in logs.
	Path string
}

// Params define the dependencies for NewSink.
type Params struct {
	fx.In

	FS             fs.ClientFS
	Lifecycle      fx.Lifecycle
	ClientInfoFile clientinfofile.ClientInfoFile
}

// NewSink creates a sink writing to a temporary file under a directory named
// after the sink. The file is removed on shutdown.
func NewSink(p Params, name string) (Sink, error) {
	logsDirPath := filepath.Join(os.TempDir(), name)
	if err := p.FS.MkdirAll(logsDirPath); err != nil {
		return Sink{}, err
	}

	logFile, err := p.FS.TempFile(logsDirPath, "")
	if err != nil {
		return Sink{}, err
	}

	// The IDE can tail the file by reading its path from the info file.
	p.ClientInfoFile.UpdateField(fmt.Sprintf(_fmtOutputKey, name), logFile.Name())

	// Write via a logger for formatting, timestamps and buffering.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)
	traceLogger := zap.New(core).Sugar()

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			traceLogger.Sync()
			logFile.Close()
			return p.FS.Remove(logFile.Name())
		},
	})

	return Sink{
		Writer: &loggerWriter{logger: traceLogger},
		Name:   name,
		Path:   logFile.Name(),
	}, nil
}

type loggerWriter struct {
	logger *zap.SugaredLogger
}

// Write implements the io.Writer interface by sending data to the given logger.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	// Incoming data may contain multiple lines, including blank ones.
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if len(line) > 0 {
			o.logger.Info(line)
		}
	}

	return len(p), nil
}
