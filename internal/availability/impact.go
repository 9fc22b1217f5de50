package availability

import "github.com/restohub/backend/internal/domain"

type ImpactReport struct {
	AffectedPointCount   int      `json:"affectedPointCount"`
	AffectedServiceNames []string `json:"affectedServiceNames"`
}

// Impact 预览某个例外会在 date 当天关闭多少个时间点，以及涉及哪些服务。
// 与 Resolve 不同，这里不看例外的 Status，方便在启用之前预览。
func Impact(exception domain.Exception, templates []domain.SlotTemplate, date Date) (ImpactReport, error) {
	report := ImpactReport{AffectedServiceNames: []string{}}

	slots, err := expand(templates, date)
	if err != nil {
		return report, err
	}

	c, ok := compile(&exception)
	if !ok {
		return report, nil
	}

	seen := make(map[string]struct{})
	for i := range slots {
		if !c.closes(date, slots[i].template, slots[i].index) {
			continue
		}
		report.AffectedPointCount++

		name := ServiceName(slots[i].template)
		if _, exists := seen[name]; !exists {
			seen[name] = struct{}{}
			report.AffectedServiceNames = append(report.AffectedServiceNames, name)
		}
	}

	return report, nil
}
