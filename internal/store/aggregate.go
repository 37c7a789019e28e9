package store

import "sentrylog/internal/models"

// Aggregates summarizes a fetched log set for display: total count plus
// distinct guard and checkpoint counts. Pure function over the slice, no
// extra queries.
type Aggregates struct {
	TotalLogs           int `json:"totalLogs"`
	DistinctGuards      int `json:"distinctGuards"`
	DistinctCheckpoints int `json:"distinctCheckpoints"`
}

func Aggregate(logs []models.PatrolLog) Aggregates {
	guards := make(map[string]struct{}, len(logs))
	checkpoints := make(map[string]struct{}, len(logs))
	for _, l := range logs {
		guards[l.User.Name] = struct{}{}
		checkpoints[l.Checkpoint.Name] = struct{}{}
	}
	return Aggregates{
		TotalLogs:           len(logs),
		DistinctGuards:      len(guards),
		DistinctCheckpoints: len(checkpoints),
	}
}
