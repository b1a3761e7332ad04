package ports

import "sdkmigrate/internal/types"

type ReportWriterPort interface {
	WriteReport(report types.ReconcileReport, format string) (string, error)
}
