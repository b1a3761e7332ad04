package adapters

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

const reportBaseName = "reconcile-report"

// ReportFileAdapter writes reconcile reports into Dir.
type ReportFileAdapter struct {
	Dir string
}

func NewReportFileAdapter(dir string) ReportFileAdapter {
	return ReportFileAdapter{Dir: dir}
}

var _ ports.ReportWriterPort = ReportFileAdapter{}

// WriteReport serializes report as yaml, json or toml and returns the file
// path written.
func (a ReportFileAdapter) WriteReport(report types.ReconcileReport, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "yaml"
	}
	data, err := encodeReport(sortedReport(report), format)
	if err != nil {
		return "", err
	}
	path, err := a.ensurePath(reportBaseName + "." + format)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write reconcile report").
			WithCause(err)
	}
	return path, nil
}

func encodeReport(report types.ReconcileReport, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml":
		data, err = yaml.Marshal(report)
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		data = append(data, '\n')
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(report)
		data = buf.Bytes()
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported report format: " + format)
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode reconcile report").
			WithCause(err)
	}
	return data, nil
}

func sortedReport(report types.ReconcileReport) types.ReconcileReport {
	report.Transitive = append([]string(nil), report.Transitive...)
	sort.Strings(report.Transitive)
	report.Conflicts = append([]types.PackageVersionConflict(nil), report.Conflicts...)
	sort.SliceStable(report.Conflicts, func(i, j int) bool {
		return strings.ToLower(report.Conflicts[i].PackageID) < strings.ToLower(report.Conflicts[j].PackageID)
	})
	updates := append([]types.ProjectVersionUpdate(nil), report.Resolution.ProjectsNeedingUpdate...)
	sort.SliceStable(updates, func(i, j int) bool {
		if updates[i].ProjectPath != updates[j].ProjectPath {
			return updates[i].ProjectPath < updates[j].ProjectPath
		}
		return strings.ToLower(updates[i].PackageID) < strings.ToLower(updates[j].PackageID)
	})
	report.Resolution.ProjectsNeedingUpdate = updates
	return report
}

func (a ReportFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}
