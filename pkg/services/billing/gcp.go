package billing

import (
	"github.com/de-tools/cloud-billing-report/pkg/models/domain"
	"github.com/de-tools/cloud-billing-report/pkg/models/store"
)

// ProjectUsage is one (project, service) cost bucket from the GCP billing
// export. Unlike AWS line items these arrive pre-aggregated, so the packet is
// seeded rather than accumulated.
type ProjectUsage struct {
	Project string
	Service string
	Costs   *domain.CostPacket
}

// BuildProjectUsage converts warehouse rows into usage buckets. Rows with an
// empty project name carry no attributable cost and are skipped.
func BuildProjectUsage(rows []store.ProjectServiceCost) []ProjectUsage {
	usage := make([]ProjectUsage, 0, len(rows))
	for _, row := range rows {
		if row.Project == "" {
			continue
		}
		usage = append(usage, ProjectUsage{
			Project: row.Project,
			Service: row.Service,
			Costs:   domain.NewCostPacket(row.DayCost, row.MonthCost),
		})
	}
	return usage
}

// SummarizeProjects nests usage as project -> service -> CostTotal. Order
// follows the input, which the warehouse query already sorts by project and
// service.
func SummarizeProjects(usage []ProjectUsage) Summary {
	var projects []string
	byProject := map[string][]ProjectUsage{}
	for _, u := range usage {
		if _, ok := byProject[u.Project]; !ok {
			projects = append(projects, u.Project)
		}
		byProject[u.Project] = append(byProject[u.Project], u)
	}

	summary := make(Summary, 0, len(projects))
	for _, project := range projects {
		var services Summary
		for _, u := range byProject[project] {
			services = append(services, Entry{
				Key:   u.Service,
				Total: domain.TotalOf(u.Costs.Daily(), u.Costs.Monthly()),
			})
		}
		summary = append(summary, Entry{Key: project, Children: services})
	}
	return summary
}

// SummarizeProjectTotals collapses usage to project -> CostTotal.
func SummarizeProjectTotals(usage []ProjectUsage) Summary {
	var projects []string
	totals := map[string]*domain.CostPacket{}
	for _, u := range usage {
		packet, ok := totals[u.Project]
		if !ok {
			projects = append(projects, u.Project)
			packet = domain.NewCostPacket(u.Costs.Daily(), u.Costs.Monthly())
		} else {
			packet = domain.NewCostPacket(
				packet.Daily().Add(u.Costs.Daily()),
				packet.Monthly().Add(u.Costs.Monthly()),
			)
		}
		totals[u.Project] = packet
	}

	summary := make(Summary, 0, len(projects))
	for _, project := range projects {
		summary = append(summary, Entry{
			Key:   project,
			Total: domain.TotalOf(totals[project].Daily(), totals[project].Monthly()),
		})
	}
	return summary
}
