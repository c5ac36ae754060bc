package model

import "time"

type AnalyticsSummary struct {
	Period            string      `json:"period"`
	TotalKits         int         `json:"totalKits"`
	TotalPosts        int         `json:"totalPosts"`
	Impressions       int64       `json:"impressions"`
	Engagements       int64       `json:"engagements"`
	EngagementRate    float64     `json:"engagementRate"`
	MilestonesReached int         `json:"milestonesReached"`
	Milestones        []Milestone `json:"milestones,omitempty"`
}

type Milestone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ReachedAt time.Time `json:"reachedAt"`
}
