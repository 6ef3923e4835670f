package diag

import "github.com/rs/zerolog"

// ZerologSink adapts a zerolog.Logger to the Sink interface. Each
// message carries the section keyword as a structured field.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink creates a ZerologSink wrapping the given logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Info logs an info diagnostic.
func (s *ZerologSink) Info(keyword, text string) {
	s.logger.Info().Str("keyword", keyword).Msg(text)
}

// Warning logs a warning diagnostic.
func (s *ZerologSink) Warning(keyword, text string) {
	s.logger.Warn().Str("keyword", keyword).Msg(text)
}

// Error logs an error diagnostic.
func (s *ZerologSink) Error(keyword, text string) {
	s.logger.Error().Str("keyword", keyword).Msg(text)
}
