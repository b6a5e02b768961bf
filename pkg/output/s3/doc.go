// Package s3 implements the S3-compatible object storage output sink.
//
// Before uploading, the sink makes sure bucket versioning is enabled and
// installs a lifecycle rule that expires noncurrent versions after
// lifecycle.days. Every artifact is then uploaded with a GOVERNANCE object
// lock retained for retention.days, so the bucket must have object lock
// enabled. Uploads are unconditional: unchanged objects create new versions.
package s3
