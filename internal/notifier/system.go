package notifier

import (
	"context"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
)

// SystemNotifyFunc is swapped out in tests.
var SystemNotifyFunc = systemNotify

var notifyRunner command.Runner = command.NewExec(command.DefaultTimeout)

func systemNotify(title, body string) error {
	_, err := notifyRunner.Run(context.Background(), "notify-send", "--app-name=auto-idle", title, body)
	return err
}
