package notifier

import "github.com/desprit/bicklebow/internal/logger"

// LogNotifier writes alerts to the process log. Used when no external
// channel is configured, so the reaction stage always has a destination.
type LogNotifier struct{}

func (LogNotifier) SendText(text string) error {
	logger.Infof("alert: %s", text)
	return nil
}
