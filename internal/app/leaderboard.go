package app

import (
	"sort"

	"live-quiz-service/internal/domain"
)

// buildLeaderboard derives ranked standings from the participant map.
// Ordering is score descending with join order (earliest first) as the
// deterministic tie-break; ranks are 1-based and recomputed on every call.
func buildLeaderboard(participants map[string]*domain.Participant, maxScore int, includePercentage bool) []domain.LeaderboardEntry {
	ordered := sortedParticipants(participants)

	entries := make([]domain.LeaderboardEntry, 0, len(ordered))
	for i, p := range ordered {
		entry := domain.LeaderboardEntry{
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Rank:        i + 1,
		}
		if includePercentage && maxScore > 0 {
			entry.Percentage = float64(p.Score*100) / float64(maxScore)
		}
		entries = append(entries, entry)
	}
	return entries
}

// rankOf returns the 1-based rank of the given connection, or 0 if absent.
func rankOf(participants map[string]*domain.Participant, connID string) int {
	for i, p := range sortedParticipants(participants) {
		if p.ConnectionID == connID {
			return i + 1
		}
	}
	return 0
}

func sortedParticipants(participants map[string]*domain.Participant) []*domain.Participant {
	ordered := make([]*domain.Participant, 0, len(participants))
	for _, p := range participants {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].JoinOrder < ordered[j].JoinOrder
	})
	return ordered
}
