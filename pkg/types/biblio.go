// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the wire models and configuration structures for
// the ppubs client. The JSON field names mirror the Public Search HTTP
// API exactly; they are the contract with the service and must not be
// renamed.
package types

import "encoding/json"

// APIError is the error envelope the search endpoint embeds in an
// otherwise-successful response body.
type APIError struct {
	// ErrorCode is the upstream error code. The service sends it as a
	// JSON number; json.Number keeps it opaque and round-trippable.
	ErrorCode json.Number `json:"errorCode" yaml:"error_code"`

	// ErrorMessage is the upstream error text, preserved verbatim.
	ErrorMessage string `json:"errorMessage" yaml:"error_message"`
}

// DocumentStructure describes the stored page image layout of a document.
type DocumentStructure struct {
	PageCount int `json:"pageCount" yaml:"page_count"`
}

// PatentBiblio is one bibliographic summary record from a search result
// page. It carries everything the export pipeline needs: the global id,
// the source database, the image storage location, and the page count.
type PatentBiblio struct {
	// GUID is the globally unique document id (e.g. "US-11234567-B2").
	GUID string `json:"guid" yaml:"guid"`

	// Type is the source database the record came from
	// (US-PGPUB, USPAT, or USOCR).
	Type string `json:"type" yaml:"type"`

	// PatentTitle is the document title.
	PatentTitle string `json:"patentTitle" yaml:"patent_title"`

	// PublicationReferenceDocumentNumber is the publication number.
	PublicationReferenceDocumentNumber string `json:"publicationReferenceDocumentNumber" yaml:"publication_number"`

	// DatePublished is the publication date as sent by the service.
	DatePublished string `json:"datePublished" yaml:"date_published"`

	// InventorsShort is the abbreviated inventor listing.
	InventorsShort string `json:"inventorsShort,omitempty" yaml:"inventors_short,omitempty"`

	// ImageLocation is the storage prefix for the per-page TIFF images.
	ImageLocation string `json:"imageLocation" yaml:"image_location"`

	// ImageFileName is the first page image file name.
	ImageFileName string `json:"imageFileName,omitempty" yaml:"image_file_name,omitempty"`

	// DocumentStructure holds the page count used to build print jobs.
	DocumentStructure DocumentStructure `json:"documentStructure" yaml:"document_structure"`

	// Score is the relevance score assigned by the search engine.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// PageCount returns the number of stored page images for the record.
func (b *PatentBiblio) PageCount() int {
	return b.DocumentStructure.PageCount
}

// BiblioPage is one decoded page of search results. Immutable once
// decoded.
type BiblioPage struct {
	// NumFound is the total number of matches for the query, not the
	// number of records on this page.
	NumFound int `json:"numFound" yaml:"num_found"`

	// Patents holds the bibliographic records in result order.
	Patents []PatentBiblio `json:"patents" yaml:"patents"`

	// Error is the embedded error envelope, nil on success.
	Error *APIError `json:"error,omitempty" yaml:"error,omitempty"`
}
