// Package dicom provides a streaming parser and transformation pipeline for
// the DICOM file format as specified in
// [http://dicom.nema.org/medical/dicom/current/output/pdf/part05.pdf].
//
// The core is a pull/push pipeline of composable stages. ParseStage converts
// raw bytes into a typed sequence of DicomParts (headers, value chunks,
// sequence/item boundaries, fragments). TagPathTracker annotates each part
// with its nested-context TagPath. ModifyStage rewrites elements at precise
// tag paths. ValidateStage gates a stream against a set of negotiated
// (SOPClassUID, TransferSyntaxUID) contexts. CollectStage buffers a
// look-ahead window and harvests a named set of elements.
//
// Nothing in this package buffers an entire data set into memory: a PartSource
// is pulled one DicomPart at a time, so pixel data hundreds of megabytes in
// size streams through without being materialized.
package dicom
