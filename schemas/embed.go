// Package schemas holds the JSON Schema documents for the candidate record contract.
package schemas

import "embed"

// Files contains every *.schema.json in this directory
//
//go:embed *.schema.json
var Files embed.FS

// Schema file names
const (
	Common          = "common.schema.json"
	CandidateRecord = "candidate_record.schema.json"
	PartialRecord   = "partial_record.schema.json"
)
