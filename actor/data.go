package actor

// DataKind tells which field of BodyData holds the payload
type DataKind uint8

const (
	DataNone DataKind = iota
	DataIndex
	DataPointer
	DataInt
)

// BodyData is an opaque user payload attached to a body
type BodyData struct {
	Kind    DataKind
	Index   int
	Int     int32
	Pointer any
}

func IndexData(index int) BodyData {
	return BodyData{Kind: DataIndex, Index: index}
}

func IntData(value int32) BodyData {
	return BodyData{Kind: DataInt, Int: value}
}

func PointerData(p any) BodyData {
	return BodyData{Kind: DataPointer, Pointer: p}
}

// AsIndex returns the index payload, ok is false for another kind
func (d BodyData) AsIndex() (int, bool) {
	return d.Index, d.Kind == DataIndex
}

func (d BodyData) AsInt() (int32, bool) {
	return d.Int, d.Kind == DataInt
}

func (d BodyData) AsPointer() (any, bool) {
	return d.Pointer, d.Kind == DataPointer
}
