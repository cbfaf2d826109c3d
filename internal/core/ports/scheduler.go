package ports

type SchedulerService interface {
	Start()
	Stop()

	AfterNow(at int64) bool
	ScheduleTaskOnce(at int64, task func()) error
}
