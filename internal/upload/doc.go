// Package upload registers blobs for recognition and expires the ones whose
// content never arrives.
//
// Registration validates the caller's callback URL before any side effect,
// then creates the blob record, arms the upload watch, and hands back an
// upload target. The watchdog fires once after the configured window: when
// content is present it defers to the recognition trigger, otherwise it
// retires the blob as UPLOAD_TIMED_OUT.
package upload
