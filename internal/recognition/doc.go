// Package recognition implements the pipeline steps between an observed
// upload and a deliverable label list.
//
// The trigger marks the blob IN_PROGRESS before the pipeline starts so a
// racing watchdog cannot retire a blob that is already being recognized. The
// extractor classifies content-level rejections into terminal statuses, the
// normalizer flattens the raw payload into the canonical label shape, and the
// persister records the result. The failure handler is the fallback for
// anything the steps themselves do not classify.
package recognition
