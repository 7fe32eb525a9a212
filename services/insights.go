package services

import (
	"fmt"
	"sort"
	"strings"

	"sreality-agents/models"
	"sreality-agents/utils"
)

// InsightService computes and prints a summary over a finished crawl or
// merge: contact coverage, the busiest agents, agents per region.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.AgentRecord) *models.InsightReport {
	report := &models.InsightReport{
		AgentsByRegion: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalAgents = len(records)

	var counted []*models.AgentRecord
	for _, r := range records {
		report.TotalListings += r.ListingCount

		hasPhone := strings.TrimSpace(r.Phone) != ""
		hasEmail := strings.TrimSpace(r.Email) != ""
		if hasPhone {
			report.WithPhone++
		}
		if hasEmail {
			report.WithEmail++
		}
		if hasPhone && hasEmail {
			report.WithBoth++
		}

		if r.Region != "" {
			report.AgentsByRegion[r.Region]++
		}
		if r.ListingCount > 0 {
			counted = append(counted, r)
		}
	}

	// Top 5 by listing count
	sort.SliceStable(counted, func(i, j int) bool {
		return counted[i].ListingCount > counted[j].ListingCount
	})
	if len(counted) > 5 {
		report.TopAgents = counted[:5]
	} else {
		report.TopAgents = counted
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 AGENT CRAWL INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Unique agents  : \033[1m%d\033[0m\n", r.TotalAgents)
	fmt.Printf("  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Println()

	// Contact coverage
	fmt.Printf("\033[1;33m  Contact Coverage\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.TotalAgents > 0 {
		fmt.Printf("  With phone        : \033[1;32m%d (%.0f%%)\033[0m\n",
			r.WithPhone, pct(r.WithPhone, r.TotalAgents))
		fmt.Printf("  With email        : \033[1;32m%d (%.0f%%)\033[0m\n",
			r.WithEmail, pct(r.WithEmail, r.TotalAgents))
		fmt.Printf("  With phone+email  : \033[1;32m%d (%.0f%%)\033[0m\n",
			r.WithBoth, pct(r.WithBoth, r.TotalAgents))
	} else {
		fmt.Printf("  No agents found\n")
	}
	fmt.Println()

	// Top agents by listing count
	fmt.Printf("\033[1;33m  Top 5 Agents by Listing Count\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopAgents) == 0 {
		fmt.Printf("  No listing counts available\n")
	} else {
		for i, a := range r.TopAgents {
			label := a.Name
			if a.Brokerage != "" {
				label += " (" + a.Brokerage + ")"
			}
			fmt.Printf("  \033[1m%d.\033[0m %-42s \033[1;32m%d listings\033[0m\n",
				i+1, truncate(label, 40), a.ListingCount)
		}
	}
	fmt.Println()

	// Agents by region
	fmt.Printf("\033[1;33m  Agents by Region\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.AgentsByRegion) == 0 {
		fmt.Printf("  No region data\n")
	} else {
		type regionCount struct {
			region string
			count  int
		}
		var regions []regionCount
		for region, cnt := range r.AgentsByRegion {
			regions = append(regions, regionCount{region, cnt})
		}
		sort.Slice(regions, func(i, j int) bool {
			if regions[i].count != regions[j].count {
				return regions[i].count > regions[j].count
			}
			return regions[i].region < regions[j].region
		})
		for _, rc := range regions {
			bar := strings.Repeat("█", min(rc.count, 40))
			fmt.Printf("  %-30s %s (%d)\n", truncate(rc.region, 28), bar, rc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func pct(part, total int) float64 {
	return float64(part) / float64(total) * 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
