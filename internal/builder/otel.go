package builder

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rigforge/rigforge/internal/builder"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
