package domain

// DispatchMode selects which implementation a declared base-type method resolves to.
type DispatchMode uint8

const (
	// DispatchVirtual picks the method the concrete type itself exposes, so an
	// override on the concrete type wins over the declaring base's method.
	DispatchVirtual DispatchMode = iota
	// DispatchBase picks the declaring base's own implementation even when the
	// concrete type overrides it. Overriding proxies dispatch this way.
	DispatchBase
)

// String returns the mode name used in resolution records.
func (m DispatchMode) String() string {
	if m == DispatchBase {
		return "base"
	}
	return "virtual"
}
