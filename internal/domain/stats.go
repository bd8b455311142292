package domain

// Stats is the admin statistics snapshot.
type Stats struct {
	TotalUsers         int64
	UsersToday         int64
	UsersThisWeek      int64
	BannedUsers        int64
	TotalBalance       int64
	CompletedTasks     int64
	PendingWithdrawals int64
	PendingAmount      int64
	PaidOutAmount      int64
}
