// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that talk to the
// Public Search service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ppubs/0.1"). A contact email from .secrets/contact-email
	// is appended when present.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds settings for the Public Search client: transport
// settings plus the print-job poll policy.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// PollInterval is the delay between print-job status polls (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MaxPolls caps the number of print-job status polls before an export
	// is abandoned (default 600).
	MaxPolls int `json:"max_polls" yaml:"max_polls"`
}

// ExportConfig holds settings for the download command.
type ExportConfig struct {
	// DestDir is the directory PDFs are written to.
	DestDir string `json:"dest_dir" yaml:"dest_dir"`

	// DownloadDelay is the delay between consecutive document exports
	// (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// MaxDownloads caps how many records of a result page are exported
	// in one run. Zero means all.
	MaxDownloads int `json:"max_downloads" yaml:"max_downloads"`
}

// LedgerConfig holds settings for the download ledger.
type LedgerConfig struct {
	// Path is the SQLite database file (default "downloads/ppubs.db").
	Path string `json:"path" yaml:"path"`
}
