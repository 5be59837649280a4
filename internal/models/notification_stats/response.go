package models

type NotificationStatsResponse struct {
	UserID     string `json:"userId"`
	Sent       int64  `json:"sentThisWeek"`
	Failed     int64  `json:"failedThisWeek"`
	ActiveDays int    `json:"activeDaysThisWeek"`
	Enabled    bool   `json:"statsEnabled"`
}
