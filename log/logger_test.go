package log

import (
	"testing"
)

func TestLogger(t *testing.T) {
	d := "Hello"
	logger := NewLogger("1234", StreamId)
	logger.Info("Test Message: ", d)

	logger = NewLogger("1234", SubscriberId)
	logger.Info("Test Message: ", d)
}
