package services

import (
	"github.com/maxaizer/jobmatch/internal/entities"
	"time"
)

type scoreRule struct {
	points  int
	matches func(p entities.Profile) bool
}

func has(key string) func(p entities.Profile) bool {
	return func(p entities.Profile) bool { return p.Has(key) }
}

func atLeast(key string, n int) func(p entities.Profile) bool {
	return func(p entities.Profile) bool { return p.Len(key) >= n }
}

var scoreRules = []scoreRule{
	{points: 10, matches: has("fullName")},
	{points: 5, matches: has("email")},
	{points: 5, matches: has("university")},
	{points: 5, matches: has("degree")},
	{points: 10, matches: atLeast("skills", 1)},
	{points: 5, matches: has("experience")},
	{points: 5, matches: func(p entities.Profile) bool {
		return entities.IsPresent(p.Nested("portfolioLinks", "github")) ||
			entities.IsPresent(p.Nested("portfolioLinks", "linkedin"))
	}},
	{points: 5, matches: has("certifications")},
	{points: 15, matches: atLeast("skills", 3)},
	{points: 15, matches: atLeast("interests", 2)},
}

// Only the first matching bucket counts.
var recencyBuckets = []struct {
	within time.Duration
	points int
}{
	{within: 7 * 24 * time.Hour, points: 20},
	{within: 30 * 24 * time.Hour, points: 10},
	{within: 90 * 24 * time.Hour, points: 5},
}

// CalculateMatchScore rates how complete and fresh a profile is, from 0 to 100.
func CalculateMatchScore(profile entities.Profile, now time.Time) int {
	score := 0
	for _, rule := range scoreRules {
		if rule.matches(profile) {
			score += rule.points
		}
	}

	updatedAt, ok := profile.Time("updatedAt")
	if !ok {
		return score
	}
	age := now.Sub(updatedAt)
	for _, bucket := range recencyBuckets {
		if age < bucket.within {
			score += bucket.points
			break
		}
	}
	return score
}
