package pst

import (
	"github.com/google/uuid"

	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// Message is the generic typed view for IPM.Note and any class that falls
// back to it (spec.md §4.12, §6; S6).
type Message struct {
	*item
}

func (m *Message) Subject() string                 { return m.getString(format.PropSubject) }
func (m *Message) SenderName() string               { return m.getString(format.PropSenderName) }
func (m *Message) TransportMessageHeaders() string  { return m.getString(format.PropTransportHeaders) }

// Body returns the plain-text body (PtypString, 0x1000).
func (m *Message) Body() string { return m.getString(format.PropBody) }

// BodyHTML returns the HTML body, if present (0x1013).
func (m *Message) BodyHTML() string { return m.getString(format.PropBodyHTML) }

// BodyRTF returns the raw (still LZFu-compressed) RTF body blob (0x1009);
// decompression is outside this module's scope (see spec.md Non-goals).
func (m *Message) BodyRTF() []byte {
	v, ok := m.Get(format.PropRTFCompressed)
	if !ok {
		return nil
	}
	b, _ := v.AsBinary()
	return b
}

// Attachments opens the message's attachment table (NID|0x11) and returns
// every attachment row as a typed view.
func (m *Message) Attachments() ([]*Attachment, error) {
	tableNID := m.nbt.nid.WithType(uint8(format.NIDTypeAttachmentTable))
	nbt, err := m.fh.lookupNBT(tableNID)
	if err != nil {
		return nil, err
	}
	tc, err := m.fh.openTCTable(nbt)
	if err != nil {
		return nil, err
	}

	out := make([]*Attachment, 0, len(tc.RowIDs()))
	for _, rid := range tc.RowIDs() {
		nid := types.NID(rid)
		it, err := newItem(m.fh, nid)
		if err != nil {
			logger().Warn("skipping unreadable attachment", "nid", nid, "err", err)
			continue
		}
		out = append(out, &Attachment{item: it})
	}
	return out, nil
}

// Recipients opens the message's recipient table (NID|0x12) and returns
// every recipient row.
func (m *Message) Recipients() ([]*Recipient, error) {
	tableNID := m.nbt.nid.WithType(uint8(format.NIDTypeRecipientTable))
	nbt, err := m.fh.lookupNBT(tableNID)
	if err != nil {
		return nil, err
	}
	tc, err := m.fh.openTCTable(nbt)
	if err != nil {
		return nil, err
	}

	out := make([]*Recipient, 0, len(tc.RowIDs()))
	for _, rid := range tc.RowIDs() {
		out = append(out, &Recipient{tc: tc, rowID: rid})
	}
	return out, nil
}

// Appointment is the typed view for IPM.Appointment/IPM.Schedule.Meeting.*.
type Appointment struct{ Message }

// Contact is the typed view for IPM.Contact (S1/S2's Contacts folder).
type Contact struct{ Message }

func (c *Contact) GivenName() string               { return c.getString(propGivenName) }
func (c *Contact) Surname() string                 { return c.getString(propSurname) }
func (c *Contact) BusinessTelephoneNumber() string { return c.getString(propBusinessTelephone) }
func (c *Contact) CompanyName() string             { return c.getString(propCompanyName) }
func (c *Contact) Title() string                   { return c.getString(propTitle) }
func (c *Contact) WorkAddressStreet() string        { return c.getString(propWorkAddressStreet) }
func (c *Contact) WorkAddressCity() string          { return c.getString(propWorkAddressCity) }
func (c *Contact) WorkAddressState() string         { return c.getString(propWorkAddressState) }
func (c *Contact) WorkAddressPostalCode() string    { return c.getString(propWorkAddressPostalCode) }

// Email1EmailAddress returns PidLidEmail1EmailAddress ([MS-OXOCNTC] §2.2.1.2.2,
// PSETID_Address lid 0x8084). Unlike the MAPI tags above, this is a named
// property with no fixed on-disk tag: it must be resolved per file through
// the Name-to-ID map (C11) before it can be read, since the GUID it lives
// under is a custom, file-specific table entry rather than a reserved index.
func (c *Contact) Email1EmailAddress() string {
	guidIndex, ok := c.fh.nameIDMap.GUIDIndex(psetidAddress)
	if !ok {
		return ""
	}
	return c.getNamedString(guidIndex, lidEmail1EmailAddress)
}

// Task is the typed view for IPM.Task/IPM.TaskRequest.*.
type Task struct{ Message }

// Activity is the typed view for IPM.Activity (journal entries).
type Activity struct{ Message }

// Contact property tags (MAPI, [MS-OXOCNTC]) not otherwise listed in
// format's well-known-tags block because they are specific to this one
// typed view.
const (
	propGivenName             uint16 = 0x3A06
	propSurname               uint16 = 0x3A11
	propBusinessTelephone     uint16 = 0x3A08
	propCompanyName           uint16 = 0x3A16
	propTitle                 uint16 = 0x3A17
	propWorkAddressStreet     uint16 = 0x3A5D
	propWorkAddressCity       uint16 = 0x3A5F
	propWorkAddressState      uint16 = 0x3A60
	propWorkAddressPostalCode uint16 = 0x3A61
)

// psetidAddress is PSETID_Address ([MS-OXPROPS] §1.3.3), the named-property
// set PidLidEmail1EmailAddress is registered under; lidEmail1EmailAddress is
// its lid within that set.
var psetidAddress = uuid.MustParse("00062004-0000-0000-c000-000000000046")

const lidEmail1EmailAddress uint32 = 0x8084
