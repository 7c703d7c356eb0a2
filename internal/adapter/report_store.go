package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "autoconf.dev/pkg/autoconf/internal/model"
)

// ReportStore persists the summary of a provisioning pass.
type ReportStore interface {
	SaveReport(path m.Path, report m.Report) error
	LoadReport(path m.Path) (m.Report, error)
}

// YAMLReportStore writes reports as YAML documents.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes report to path, creating parent directories.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), dirPerm); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	if err := os.WriteFile(string(path), data, filePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.Report, error) {
	var report m.Report

	// #nosec G304 - report path is chosen by the user
	data, err := os.ReadFile(string(path))
	if err != nil {
		return report, fmt.Errorf("read report: %w", err)
	}

	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("unmarshal report: %w", err)
	}

	return report, nil
}
