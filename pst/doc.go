// Package pst implements a read-only decoder for Microsoft Outlook PST/OST
// files: header validation, the Node and Block B-trees, the block/sub-block
// stream with compressible-encryption decoding, the Heap-on-Node and its two
// table formats (property context and table context), the name-to-ID map,
// and a typed Folder/Message/Attachment/Recipient object layer.
//
// Open a file with Open or OpenBytes, obtain the message store's root
// folder with FileHandle.RootFolder, and navigate from there:
//
//	fh, err := pst.Open("sample.ost", types.OpenOptions{})
//	if err != nil { ... }
//	defer fh.Close()
//	root, err := fh.RootFolder()
//	top, err := root.SubFolders()
//	contacts, err := top[1].SubFolders()
//
// pstkit never writes to the underlying file; every returned value is a
// read-only view over the file handle's borrowed bytes or a small decoded
// copy (see spec.md §5 for the concurrency and resource model this mirrors).
package pst
