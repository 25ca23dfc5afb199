package recognition

import (
	"lens/internal/blob"
	"lens/internal/recognizer"
)

// Normalize flattens a raw detection payload into the canonical label list.
// It preserves input order and always materializes the parents list so a
// label without parent categories serializes as [] rather than null.
func Normalize(detection recognizer.Detection) []blob.Label {
	labels := make([]blob.Label, 0, len(detection.Labels))
	for _, raw := range detection.Labels {
		parents := make([]string, 0, len(raw.Parents))
		for _, parent := range raw.Parents {
			parents = append(parents, parent.Name)
		}
		labels = append(labels, blob.Label{
			Label:      raw.Name,
			Confidence: raw.Confidence,
			Parents:    parents,
		})
	}
	return labels
}
