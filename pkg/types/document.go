// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Document is the highlighted full-text view of a single patent document
// returned by the highlight endpoint. This models the subset of fields the
// CLI and export pipeline consume; unknown fields are ignored on decode.
type Document struct {
	GUID        string `json:"guid" yaml:"guid"`
	Type        string `json:"type" yaml:"type"`
	PatentTitle string `json:"patentTitle" yaml:"patent_title"`

	PublicationReferenceDocumentNumber string `json:"publicationReferenceDocumentNumber" yaml:"publication_number"`
	DatePublished                      string `json:"datePublished" yaml:"date_published"`

	// InventorsName lists the inventors as returned by the service.
	InventorsName []string `json:"inventorsName,omitempty" yaml:"inventors_name,omitempty"`

	// AbstractHTML, ClaimsHTML, and DescriptionHTML carry the highlighted
	// section markup requested via includeSections.
	AbstractHTML    []string `json:"abstractHtml,omitempty" yaml:"abstract_html,omitempty"`
	ClaimsHTML      []string `json:"claimsHtml,omitempty" yaml:"claims_html,omitempty"`
	DescriptionHTML []string `json:"descriptionHtml,omitempty" yaml:"description_html,omitempty"`

	ImageLocation     string            `json:"imageLocation,omitempty" yaml:"image_location,omitempty"`
	ImageFileName     string            `json:"imageFileName,omitempty" yaml:"image_file_name,omitempty"`
	DocumentStructure DocumentStructure `json:"documentStructure" yaml:"document_structure"`
}
