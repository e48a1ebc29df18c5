package ebml

// Well-known EBML and Matroska/WebM tag ids, carried over from the
// schema catalog embedded in the schema package (schema/data/
// default_schema.json). Exported here as typed int64 constants for use
// in tests and by callers assembling events without going through a
// Schema lookup by hand.
const (
	IDEBMLHeader             int64 = 0x1A45DFA3
	IDEBMLVersion            int64 = 0x4286
	IDEBMLReadVersion        int64 = 0x42F7
	IDEBMLMaxIDLength        int64 = 0x42F2
	IDEBMLMaxSizeLength      int64 = 0x42F3
	IDEBMLDocType            int64 = 0x4282
	IDEBMLDocTypeVersion     int64 = 0x4287
	IDEBMLDocTypeReadVersion int64 = 0x4285

	IDSegment int64 = 0x18538067

	IDSeekHead int64 = 0x114D9B74
	IDSeek     int64 = 0x4DBB
	IDSeekID   int64 = 0x53AB
	IDSeekPos  int64 = 0x53AC

	IDInfo           int64 = 0x1549A966
	IDSegmentUID     int64 = 0x73A4
	IDTimestampScale int64 = 0x2AD7B1
	IDDuration       int64 = 0x4489
	IDDateUTC        int64 = 0x4461
	IDTitle          int64 = 0x7BA9
	IDMuxingApp      int64 = 0x4D80
	IDWritingApp     int64 = 0x5741

	IDTracks     int64 = 0x1654AE6B
	IDTrackEntry int64 = 0xAE
	IDTrackNum   int64 = 0xD7
	IDTrackUID   int64 = 0x73C5
	IDTrackType  int64 = 0x83
	IDCodecID    int64 = 0x86

	IDCluster     int64 = 0x1F43B675
	IDTimestamp   int64 = 0xE7
	IDSimpleBlock int64 = 0xA3

	IDCues     int64 = 0x1C53BB6B
	IDCuePoint int64 = 0xBB
	IDCueTime  int64 = 0xB3

	IDChapters    int64 = 0x1043A770
	IDTags        int64 = 0x1254C367
	IDAttachments int64 = 0x1941A469
)
