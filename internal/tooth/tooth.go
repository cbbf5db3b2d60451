package tooth

import (
	"bracket-guide/pkg/geometry"
)

// Landmark indexes into a DetectedTooth's fixed landmark list.
type Landmark int

const (
	LandmarkCenter Landmark = iota
	LandmarkIncisal
	LandmarkGingival
	LandmarkMesial
	LandmarkDistal

	// LandmarkCount is the fixed number of landmarks per tooth.
	LandmarkCount = 5
)

func (l Landmark) String() string {
	switch l {
	case LandmarkCenter:
		return "center"
	case LandmarkIncisal:
		return "incisal"
	case LandmarkGingival:
		return "gingival"
	case LandmarkMesial:
		return "mesial"
	case LandmarkDistal:
		return "distal"
	default:
		return "unknown"
	}
}

// Pose is a position plus Euler-degree rotation in world space.
type Pose struct {
	Position geometry.Vector3 `json:"position"`
	Rotation geometry.Vector3 `json:"rotation"`
}

// DetectedTooth is one localized tooth from a single detection pass.
// A fresh list is produced for every processed frame; there is no identity
// across frames, and re-association by ID is the caller's concern.
type DetectedTooth struct {
	ID            string               `json:"id"` // FDI notation label
	Confidence    float64              `json:"confidence"`
	BoundingBox   geometry.BoundingBox `json:"bounding_box"`
	Pose          Pose                 `json:"pose"`
	SurfaceNormal geometry.Vector3     `json:"surface_normal"`

	// Landmarks always holds exactly LandmarkCount entries, indexed by
	// the Landmark constants.
	Landmarks []geometry.Vector3 `json:"landmarks"`

	// OptimalAttachment is the ideal bracket position, offset from the
	// tooth surface along its normal.
	OptimalAttachment geometry.Vector3 `json:"optimal_attachment"`
}
