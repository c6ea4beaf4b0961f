package telemetry

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// profileTypes are the Go profiles pushed to Pyroscope.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func startProfiler(serviceName, address, version string, logger *zap.Logger) (*pyroscope.Profiler, error) {
	if address == "" {
		return nil, fmt.Errorf("pyroscope address is required when profiling is enabled")
	}
	tags := map[string]string{"version": version}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: serviceName,
		ServerAddress:   address,
		Logger:          pyroscopeLogger{logger.Named("pyroscope")},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}
	return p, nil
}

// pyroscopeLogger adapts zap to pyroscope.Logger.
type pyroscopeLogger struct {
	l *zap.Logger
}

func (p pyroscopeLogger) Infof(format string, args ...any) {
	p.l.Sugar().Infof(format, args...)
}

func (p pyroscopeLogger) Debugf(format string, args ...any) {
	p.l.Sugar().Debugf(format, args...)
}

func (p pyroscopeLogger) Errorf(format string, args ...any) {
	p.l.Sugar().Errorf(format, args...)
}
