package ebml

import "github.com/go-ebml/ebml/schema"

// testSchema is a small hand-built catalog covering exactly the tags
// the fixtures below use, mirroring the teacher's habit of constructing
// minimal fixtures inline rather than loading the full default catalog
// in every test.
func testSchema() schema.MapSchema {
	return schema.MapSchema{
		IDEBMLHeader:      {Name: "EBML", Type: "m", Level: 0},
		IDEBMLVersion:     {Name: "EBMLVersion", Type: "u", Level: 1},
		IDEBMLDocType:     {Name: "DocType", Type: "s", Level: 1},
		IDEBMLMaxIDLength: {Name: "EBMLMaxIDLength", Type: "u", Level: 1},
		IDSegment:         {Name: "Segment", Type: "m", Level: 0},
		IDCluster:         {Name: "Cluster", Type: "m", Level: 1},
		IDTimestamp:       {Name: "Timestamp", Type: "u", Level: 2},
		IDSimpleBlock:     {Name: "SimpleBlock", Type: "b", Level: 2},
	}
}

// fixtureEmptyHeader is an EBML master with declared size 0: no
// children, MasterStart immediately followed by MasterEnd.
var fixtureEmptyHeader = []byte{0x1A, 0x45, 0xDF, 0xA3, 0x80}

// fixtureHeaderWithDocType is an EBML master containing a single
// EBMLVersion uint child and a DocType string child.
var fixtureHeaderWithDocType = []byte{
	0x1A, 0x45, 0xDF, 0xA3, 0x8F, // EBML, size 15
	0x42, 0x86, 0x81, 0x01, // EBMLVersion = 1
	0x42, 0x82, 0x88, 'm', 'a', 't', 'r', 'o', 's', 'k', 'a', // DocType = "matroska"
}

// fixtureUnknownSizeSegment is a Segment of unknown size containing a
// single Cluster with one Timestamp leaf, closed by the close-cascade
// heuristic rather than by a declared size.
var fixtureUnknownSizeSegment = []byte{
	0x18, 0x53, 0x80, 0x67, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, // Segment, unknown size
	0x1F, 0x43, 0xB6, 0x75, 0x83, // Cluster, size 3
	0xE7, 0x81, 0x05, // Timestamp = 5
}
