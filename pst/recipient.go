package pst

// Recipient property tags ([MS-OXOMSG] §2.2.3), not reused elsewhere so kept
// local to this file rather than format's shared well-known-tags block.
const (
	propRecipientDisplayName  uint16 = 0x5FF6
	propRecipientEmailAddress uint16 = 0x39FE
	propRecipientType         uint16 = 0x0C15
)

// Recipient is one row of a message's recipient table (spec.md §4.12, §6).
// Unlike Folder/Message/Attachment, a recipient row has no NBT entry of its
// own: its properties live directly in the TC row, so Recipient
// dereferences through the owning table rather than opening a PC table.
type Recipient struct {
	tc    *tcTable
	rowID uint32
}

func (r *Recipient) get(propID uint16) (PropValue, bool) {
	v, ok, err := r.tc.Get(r.rowID, propID)
	if err != nil {
		logger().Warn("recipient property dereference failed", "row", r.rowID, "prop", propID, "err", err)
		return PropValue{}, false
	}
	return v, ok
}

func (r *Recipient) getString(propID uint16) string {
	v, ok := r.get(propID)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// DisplayName is the recipient's PidTagRecipientDisplayName.
func (r *Recipient) DisplayName() string { return r.getString(propRecipientDisplayName) }

// EmailAddress is the recipient's PidTagRecipientEmailAddress.
func (r *Recipient) EmailAddress() string { return r.getString(propRecipientEmailAddress) }

// RecipientType reports To (1), Cc (2), or Bcc (3) per PidTagRecipientType.
func (r *Recipient) RecipientType() int32 {
	v, ok := r.get(propRecipientType)
	if !ok {
		return 0
	}
	n, _ := v.AsInt64()
	return int32(n)
}
