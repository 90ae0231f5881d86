package pst

import (
	"github.com/pstkit/pstkit/internal/format"
	"github.com/pstkit/pstkit/pkg/types"
)

// MessageStore is the top-level node (NID 33) carrying file-wide properties:
// the mailbox owner, default folder NIDs, and retention settings (spec.md
// §3, §6).
type MessageStore struct {
	*item
}

// DisplayName is the store's PidTagDisplayName (the mailbox owner's name).
func (s *MessageStore) DisplayName() string { return s.getString(format.PropDisplayName) }

// MessageStore opens the file's top-level store node (NID 33, spec.md §3).
func (fh *FileHandle) MessageStore() (*MessageStore, error) {
	it, err := newItem(fh, types.NID(format.NIDMessageStore))
	if err != nil {
		return nil, err
	}
	return &MessageStore{item: it}, nil
}
