package models

import "time"

// ConnectorDescriptor identifies one data-source connector in the catalog.
type ConnectorDescriptor struct {
	CanonicalID string `yaml:"canonical_id"`
	DisplayName string `yaml:"display_name"`
}

// ConfigSchema is the connector's setup specification as served by the
// registry. The schema document itself stays opaque raw JSON.
type ConfigSchema struct {
	ConnectorID string
	Spec        []byte
	Streams     []string
}

// Chapters holds the five generated sections of one blog post. A fixed
// struct rather than a map so a missing chapter key cannot exist; blank
// fields are still rejected at assembly time.
type Chapters struct {
	Introduction string
	Chapter1     string
	Chapter2     string
	Chapter3     string
	Conclusion   string
}

// Complete reports whether every chapter has content.
func (c Chapters) Complete() bool {
	return c.Introduction != "" && c.Chapter1 != "" && c.Chapter2 != "" &&
		c.Chapter3 != "" && c.Conclusion != ""
}

// BlogPost is the assembled document for one connector.
type BlogPost struct {
	Connector ConnectorDescriptor
	Body      string
}

// UploadResult reports the CMS response for one upload attempt. A non-2xx
// status is a reported failure, not an error: Body carries the response
// text for diagnostics.
type UploadResult struct {
	Success    bool
	StatusCode int
	Body       string
}

// PostRecord is one ledger row: the outcome of publishing one connector's
// post within a run.
type PostRecord struct {
	RunID         string
	Connector     string
	Status        string
	FilePath      string
	CMSStatusCode int
	Error         string
	CreatedAt     time.Time
}
