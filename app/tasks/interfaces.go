package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to run the scrape pipeline in the background.
// Example usage:
//
//	scheduler := NewScheduler(radar, ScheduleOptions{Source: baseURL, Interval: time.Hour, Pages: 1, StartPage: 1})
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewScrapeTask(baseURL, radar, 1, 1, false))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
