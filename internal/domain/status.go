package domain

import (
	"fmt"
	"strings"
)

// ArtworkStatus is both an artwork's lifecycle state and its pipeline stage.
type ArtworkStatus string

// Statuses in board order.
const (
	StatusConcept    ArtworkStatus = "concept"
	StatusInProgress ArtworkStatus = "in_progress"
	StatusFinished   ArtworkStatus = "finished"
	StatusSold       ArtworkStatus = "sold"
)

// Statuses lists every status in board order.
var Statuses = []ArtworkStatus{StatusConcept, StatusInProgress, StatusFinished, StatusSold}

var statusLabels = map[ArtworkStatus]string{
	StatusConcept:    "Konsep",
	StatusInProgress: "Dalam Proses",
	StatusFinished:   "Selesai",
	StatusSold:       "Terjual",
}

var statusColors = map[ArtworkStatus]string{
	StatusConcept:    "#94a3b8",
	StatusInProgress: "#f59e0b",
	StatusFinished:   "#3b82f6",
	StatusSold:       "#10b981",
}

// ParseArtworkStatus accepts the canonical values and the hyphenated
// "in-progress" spelling used by the board.
func ParseArtworkStatus(s string) (ArtworkStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	status := ArtworkStatus(normalized)
	if _, ok := statusLabels[status]; !ok {
		return "", fmt.Errorf("unknown artwork status %q", s)
	}
	return status, nil
}

// Valid reports whether s is a known status.
func (s ArtworkStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Indonesian display label.
func (s ArtworkStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Color returns the chart colour for the status.
func (s ArtworkStatus) Color() string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return "#6b7280"
}

// Active reports whether the status is still moving through the pipeline.
func (s ArtworkStatus) Active() bool {
	return s != StatusSold
}
