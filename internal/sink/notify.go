package sink

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/AndreyAkinshin/dejadiff/internal/logging"
	"github.com/AndreyAkinshin/dejadiff/internal/regression"
	"github.com/AndreyAkinshin/dejadiff/internal/render"
)

// Notify sends one desktop notification per suite through a
// notify-send compatible command.
//
// Notifications are best effort: the first failure is logged and the
// remaining suites are skipped.
type Notify struct {
	command string
	logger  *slog.Logger
}

// NewNotify creates a notification sink.
func NewNotify(command string, logger *slog.Logger) *Notify {
	return &Notify{command: command, logger: logging.OrDiscard(logger)}
}

// Name returns the sink name.
func (n *Notify) Name() string { return "notify" }

// LoadPrevious returns an empty previous run.
func (n *Notify) LoadPrevious(context.Context) (regression.PreviousRun, error) {
	return regression.PreviousRun{}, nil
}

// Store sends the notifications, suites in lexical key order.
func (n *Notify) Store(ctx context.Context, pub Publication) error {
	for _, key := range pub.Results.SortedKeys() {
		e, _ := pub.Results.Get(key)
		title := render.NotificationTitle(key)
		body := render.NotificationBody(e.Suite.Counts)

		out, err := exec.CommandContext(ctx, n.command, title, body).CombinedOutput()
		if err != nil {
			n.logger.Warn("unable to send notification", "command", n.command, "suite", key, "error", err, "output", string(out))
			return nil
		}
	}
	return nil
}

// Close does nothing.
func (n *Notify) Close() error { return nil }
