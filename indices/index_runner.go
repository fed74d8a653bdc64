package indices

import (
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCron schedules a nightly full sync, the returned cron must be stopped on shutdown.
func StartCron(spec string) (*cron.Cron, error) {
	crontab := cron.New(cron.WithSeconds())
	if _, err := crontab.AddFunc(spec, func() {
		if _, err := ScheduleNewSyncRunFunc(indexRobot); err != nil {
			logrus.Errorf("scheduled indices sync: %v", err)
		}
	}); err != nil {
		return nil, err
	}
	crontab.Start()
	return crontab, nil
}
