package output

import "research-agent/internal/domain/entity"

type ReportCache interface {
	Put(query string, report entity.Report) entity.Report
	Has(query string, report entity.Report) bool
	Len() int
}
