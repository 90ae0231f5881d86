package pst

import (
	"bytes"
	"io"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// Attachment is the typed view over an attachment table row's node (spec.md
// §4.12, §6).
type Attachment struct {
	*item
}

func (a *Attachment) Filename() string     { return a.getString(format.PropAttachFilename) }
func (a *Attachment) LongFilename() string { return a.getString(format.PropAttachLongFilename) }
func (a *Attachment) MimeTag() string      { return a.getString(format.PropAttachMimeTag) }

// Size returns the attachment's declared size in bytes (0x0E20), or 0 if
// absent.
func (a *Attachment) Size() int64 {
	v, ok := a.Get(format.PropAttachSize)
	if !ok {
		return 0
	}
	n, _ := v.AsInt64()
	return n
}

// FileInputStream returns a reader over the attachment's binary payload
// (0x3701), matching spec.md §6's `fileInputStream`.
func (a *Attachment) FileInputStream() (io.Reader, error) {
	v, ok := a.Get(format.PropAttachDataBin)
	if !ok {
		return bytes.NewReader(nil), nil
	}
	b, _ := v.AsBinary()
	return bytes.NewReader(b), nil
}

// nidAttachmentEmbeddedObject is the local sub-node id reserved for an
// attachment's embedded message, following [MS-PST] §2.4.6.3's
// attachObjectID convention. spec.md is silent on this value (design
// note §9's open question on entryValueReference is the closest analog);
// this follows the one literal constant [MS-PST] itself defines rather
// than leaving the lookup unimplemented.
const nidAttachmentEmbeddedObject = 0x0001

// EmbeddedMessage opens the attachment's embedded message object, if the
// attachment is itself a message (attach method 5, embedded object) rather
// than a binary file. Returns ok=false when there is no sub-object to open.
func (a *Attachment) EmbeddedMessage() (Item, bool, error) {
	entry, ok := a.subNodes[types.NID(nidAttachmentEmbeddedObject)]
	if !ok {
		return nil, false, nil
	}

	nbt := nbtEntry{nid: a.nbt.nid, dataBID: entry.dataBID, subNodeBID: entry.subNodeBID}
	pc, err := a.fh.openBCTable(nbt)
	if err != nil {
		return nil, false, err
	}
	subNodes, err := a.fh.loadSubNodes(entry.subNodeBID)
	if err != nil {
		return nil, false, err
	}

	base := &item{fh: a.fh, nbt: nbt, pc: pc, subNodes: subNodes}
	return classifyItem(base), true, nil
}
