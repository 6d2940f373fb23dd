package models

type StatsOverview struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Pending        int            `json:"pending"`
	Today          int            `json:"today"`
	Overdue        int            `json:"overdue"`
	CompletionRate float64        `json:"completion_rate"`
	ByPriority     map[string]int `json:"by_priority"`
	ByCategory     map[string]int `json:"by_category"`
}

type DailyStat struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
}

type WeeklyStats struct {
	Daily []DailyStat `json:"daily"`
}
