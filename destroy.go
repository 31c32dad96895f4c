package cryptid

// Destroyer is implemented by every value that owns secret material.
// Destroy clears that material; calling it again is a no-op.
type Destroyer interface {
	Destroy()
}

// DestroyAll destroys every non-nil value in order.
func DestroyAll(values ...Destroyer) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}
