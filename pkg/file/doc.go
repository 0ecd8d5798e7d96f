// Package file stores small blobs such as saved documents and HTML templates
// on the local disk or in S3-compatible object storage.
//
// Both backends implement Storage. Paths are slash separated and relative to
// the storage root; paths escaping the root are rejected with ErrInvalidPath.
//
//	store, err := file.NewLocalStorage("./data", "/files/")
//	if err != nil {
//		return err
//	}
//	err = store.Put(ctx, "documents/welcome.json", data, "application/json")
//
// KV adapts a Storage to a key-value interface, one object per key.
package file
