package addin

import "fmt"

// VariantType is the kind of value a Variant carries.
type VariantType int

const (
	Empty VariantType = iota
	Bool
	Int32
	String
	Blob
)

func (t VariantType) String() string {
	switch t {
	case Empty:
		return "empty"
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case String:
		return "string"
	case Blob:
		return "blob"
	}
	return fmt.Sprintf("VariantType(%d)", int(t))
}

// Variant is a value that can cross the host boundary.
type Variant struct {
	Type VariantType
	b    bool
	i    int32
	s    string
	blob []byte
}

func BoolValue(b bool) Variant      { return Variant{Type: Bool, b: b} }
func Int32Value(i int32) Variant    { return Variant{Type: Int32, i: i} }
func StringValue(s string) Variant  { return Variant{Type: String, s: s} }
func BlobValue(blob []byte) Variant { return Variant{Type: Blob, blob: blob} }

func (v Variant) AsBool() (bool, error) {
	if v.Type != Bool {
		return false, v.mismatch(Bool)
	}
	return v.b, nil
}

func (v Variant) AsInt32() (int32, error) {
	if v.Type != Int32 {
		return 0, v.mismatch(Int32)
	}
	return v.i, nil
}

func (v Variant) AsString() (string, error) {
	if v.Type != String {
		return "", v.mismatch(String)
	}
	return v.s, nil
}

func (v Variant) AsBlob() ([]byte, error) {
	if v.Type != Blob {
		return nil, v.mismatch(Blob)
	}
	return v.blob, nil
}

func (v Variant) mismatch(want VariantType) error {
	return fmt.Errorf("expected %s value, got %s", want, v.Type)
}
