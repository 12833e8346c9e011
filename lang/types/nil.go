package types

// NullType is the type of Null. Its only legal value is Null.
type NullType byte

const Null = NullType(0)

var _ Value = Null

func (NullType) String() string { return "null" }
func (NullType) Type() string   { return "Null" }
