// Package connectors holds PaperSource implementations: places the inbox
// importer discovers PDFs in. The filesystem connector scans and watches a
// local directory tree.
package connectors
