// Package socialarchive archives exported course pages of the Social
// e-learning system into a delivery package. Only assessment-related pages
// and their attachments are kept, attachments are copied under normalized
// filenames, and the result is described by an XML manifest.
//
// This package contains domain types, pure domain logic and interfaces
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., fs/, etree/,
// sqlite/, poppler/).
package socialarchive
