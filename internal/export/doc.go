// Package export renders stored conversations as shareable documents.
//
// Two formats are supported: a Markdown transcript with one heading per
// turn, and a standalone HTML page produced by converting that transcript
// with goldmark. Token usage totals, when present, appear as a footer.
package export
