package models

import "time"

// ExportFormat enumerates supported export renderers.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult describes a rendered export and its download link.
type ExportResult struct {
	ID          string       `json:"id"`
	ClassID     string       `json:"class_id"`
	Format      ExportFormat `json:"format"`
	Source      string       `json:"source"`
	DownloadURL string       `json:"download_url"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Rows        int          `json:"rows"`
}
