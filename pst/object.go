package pst

import (
	"strings"
	"time"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// Item is the tagged variant every object-factory result satisfies (design
// notes §9: "model as a tagged variant... with a shared property-accessor
// trait; the factory returns the variant, callers match").
type Item interface {
	// NID returns the underlying node identifier.
	NID() types.NID
	// Get returns a single property by tag.
	Get(propID uint16) (PropValue, bool)
	// MessageClass returns the dispatch tag this item was classified under.
	MessageClass() string
}

// item is the shared base every typed view embeds: the owning file, its NBT
// descriptor, its property table, and the resolved sub-node map.
type item struct {
	fh       *FileHandle
	nbt      nbtEntry
	pc       *bcTable
	subNodes map[types.NID]subNodeEntry
}

func (o *item) NID() types.NID { return o.nbt.nid }

func (o *item) Get(propID uint16) (PropValue, bool) {
	v, ok, err := o.pc.Get(propID)
	if err != nil {
		logger().Warn("property dereference failed", "nid", o.nbt.nid, "prop", propID, "err", err)
		return PropValue{}, false
	}
	return v, ok
}

func (o *item) getString(propID uint16) string {
	v, ok := o.Get(propID)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// GetNamed resolves a named property (lid under the GUID registered at
// guidIndex in the file's Name-to-ID map, C11) to its value. Named
// properties such as PidLidEmail1EmailAddress have no fixed MAPI tag: the
// tag is assigned per file and must be looked up via NameToIDMap.LookupNumeric
// before Get can be used (spec.md §4.11).
func (o *item) GetNamed(guidIndex int, lid uint32) (PropValue, bool) {
	propID, ok := o.fh.nameIDMap.LookupNumeric(guidIndex, lid)
	if !ok {
		return PropValue{}, false
	}
	return o.Get(propID)
}

func (o *item) getNamedString(guidIndex int, lid uint32) string {
	v, ok := o.GetNamed(guidIndex, lid)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

func (o *item) MessageClass() string {
	return o.getString(format.PropMessageClass)
}

// CreationTime returns PidTagCreationTime (0x3007; spec.md S2/S3).
func (o *item) CreationTime() (time.Time, bool) {
	v, ok := o.Get(format.PropCreationTime)
	if !ok {
		return time.Time{}, false
	}
	return v.AsTime()
}

// newItem opens the PC table and sub-node map for nid and wraps it in item.
func newItem(fh *FileHandle, nid types.NID) (*item, error) {
	nbt, err := fh.lookupNBT(nid)
	if err != nil {
		return nil, err
	}
	pc, err := fh.openBCTable(nbt)
	if err != nil {
		return nil, err
	}
	subNodes, err := fh.loadSubNodes(nbt.subNodeBID)
	if err != nil {
		return nil, err
	}
	return &item{fh: fh, nbt: nbt, pc: pc, subNodes: subNodes}, nil
}

// openItem is the object factory (C12): it classifies nid's MessageClass
// property and returns the matching typed view, per spec.md §4.12. An
// unrecognized or absent class falls back to a generic Message; a non-empty
// unrecognized class is also logged (spec.md §4.13, §7's whitelisted
// swallow point; S6).
func (fh *FileHandle) openItem(nid types.NID) (Item, error) {
	base, err := newItem(fh, nid)
	if err != nil {
		return nil, err
	}
	return classifyItem(base), nil
}

// classifyItem applies the MessageClass dispatch table to an already-opened
// base item (shared by openItem's top-level NBT path and an attachment's
// embedded-message sub-object path).
func classifyItem(base *item) Item {
	nid := base.nbt.nid
	class := base.MessageClass()
	switch {
	case nid.Type() == uint8(format.NIDTypeNormalFolder), nid.Type() == uint8(format.NIDTypeSearchFolder):
		return &Folder{item: base}
	case matchesClass(class, "IPM.Contact"):
		return &Contact{Message: Message{item: base}}
	case matchesClass(class, "IPM.Appointment"), matchesClass(class, "IPM.Schedule.Meeting."):
		return &Appointment{Message: Message{item: base}}
	case matchesClass(class, "IPM.Task"), matchesClass(class, "IPM.TaskRequest."):
		return &Task{Message: Message{item: base}}
	case matchesClass(class, "IPM.Activity"):
		return &Activity{Message: Message{item: base}}
	case matchesClass(class, "IPM.Note"), matchesClass(class, "IPM.Note.SMIME."), matchesClass(class, "REPORT.IPM.Note."):
		return &Message{item: base}
	default:
		if class != "" {
			logger().Info("unrecognized message class, returning generic message", "nid", nid, "class", class)
		}
		return &Message{item: base}
	}
}

// matchesClass reports whether class equals prefix or, when prefix ends in
// ".", has it as a case-insensitive dot-prefix (spec.md §4.12's table uses
// both exact names and "Foo.*" wildcard prefixes).
func matchesClass(class, prefix string) bool {
	class = strings.ToUpper(class)
	prefix = strings.ToUpper(prefix)
	if strings.HasSuffix(prefix, ".") {
		return strings.HasPrefix(class, prefix)
	}
	return class == prefix
}
