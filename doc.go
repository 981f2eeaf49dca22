// Package objectstore provides a small, dependency-injectable facade over an
// S3-compatible object storage service.
//
// The Client offers single-object upload, download and delete, a batch delete
// carried in one request, a batch upload that bounds how many uploads are in
// flight at once, and deterministic URL construction for stored objects.
//
// # Outcomes
//
// Every operation reports failure through a returned error; nothing panics
// across the package boundary. Errors are *errors.Error values carrying the
// operation, a failure Kind, the bucket and key(s) involved and the
// underlying cause:
//
//	url, err := client.Add(ctx, "media", "folder/pic.jpg", file)
//	if err != nil {
//	    var e *storeerrors.Error
//	    if errors.As(err, &e) && e.Kind == storeerrors.KindStatus {
//	        log.Printf("upload of %s returned %d", e.Key, e.StatusCode)
//	    }
//	}
//
// # Batch uploads
//
// AddBatch uploads up to Config.MaxBatchSize items, keeping at most
// Config.UploadConcurrency uploads in flight. Results come back in completion
// order, one per item, each carrying the item's key. A batch larger than the
// limit is rejected whole, without any upload.
//
// # Transports
//
// The wire protocol is delegated to a transport.Transport. New selects one from
// the configuration (aws-sdk-go-v2 by default, minio-go when Config.Provider is
// "minio"); NewWithTransport accepts any implementation.
package objectstore
