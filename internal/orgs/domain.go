package orgs

import "time"

// Kind places an organization in the platform hierarchy.
type Kind string

const (
	KindPlatform  Kind = "platform"
	KindFranchise Kind = "franchise"
	KindSociety   Kind = "society"
)

// parentKind maps each kind to the kind its parent must have. The
// platform root has no parent.
var parentKind = map[Kind]Kind{
	KindFranchise: KindPlatform,
	KindSociety:   KindFranchise,
}

// Valid reports whether the kind is a member of the closed set.
func (k Kind) Valid() bool {
	switch k {
	case KindPlatform, KindFranchise, KindSociety:
		return true
	}
	return false
}

// Organization is a node in the platform → franchise → society tree.
type Organization struct {
	ID        int64
	ParentID  int64 // 0 for the platform root
	Kind      Kind
	Name      string
	Code      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
