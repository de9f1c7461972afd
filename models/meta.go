package models

// Metadata is shared by every object kind in the cluster. Names are unique
// per kind per namespace; UIDs are unique across the whole simulation.
type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Namespace   string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	UID         string            `json:"uid,omitempty" yaml:"uid,omitempty"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`

	// OwnerRef is a display hint recorded by the controller that created
	// the object. Reconciliation never consults it; adoption is decided
	// by label selectors alone.
	OwnerRef *OwnerRef `json:"ownerRef,omitempty" yaml:"ownerRef,omitempty"`

	// CreatedAt is the tick the object was created on.
	CreatedAt int `json:"createdAt" yaml:"createdAt"`

	// DeletedAt marks the object terminating; it is finalized at the
	// start of the next tick.
	DeletedAt *int `json:"deletedAt,omitempty" yaml:"deletedAt,omitempty"`
}

// OwnerRef points at the object that created this one. Audit display only.
type OwnerRef struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	UID  string `json:"uid,omitempty" yaml:"uid,omitempty"`
}

// Terminating reports whether the object carries a deletion timestamp.
func (m *Metadata) Terminating() bool {
	return m.DeletedAt != nil
}

// Label returns the value of the named label, or "".
func (m *Metadata) Label(key string) string {
	if m.Labels == nil {
		return ""
	}
	return m.Labels[key]
}

// SetLabel sets a label, allocating the map if needed.
func (m *Metadata) SetLabel(key, value string) {
	if m.Labels == nil {
		m.Labels = map[string]string{}
	}
	m.Labels[key] = value
}

// SetAnnotation sets an annotation, allocating the map if needed.
func (m *Metadata) SetAnnotation(key, value string) {
	if m.Annotations == nil {
		m.Annotations = map[string]string{}
	}
	m.Annotations[key] = value
}
