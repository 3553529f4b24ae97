package notifications

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/logger"
)

type NotificationService struct {
	config *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		config: cfg,
	}
}

// NotifyRunComplete announces a finished long-running pass (crawl,
// download, import). Delivery is best effort; a failed notification
// only gets logged.
func (ns *NotificationService) NotifyRunComplete(operation, detail string) {
	if !ns.config.Notify.Enabled {
		return
	}

	message := fmt.Sprintf("%s finished: %s", operation, detail)

	if ns.config.Notify.SystemNotify {
		ns.sendSystemNotification(message, "Gallery Crawler")
	}
}

func (ns *NotificationService) sendSystemNotification(message, title string) {
	err := beeep.Notify(title, message, "")
	if err != nil {
		logger.Logger.Printf("Failed to send system notification: %v", err)
	}
}
