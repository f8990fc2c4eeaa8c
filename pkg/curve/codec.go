package curve

// MarshalBinary implements encoding.BinaryMarshaler for Scalar.
func (s *Scalar) MarshalBinary() ([]byte, error) { return s.Bytes(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Scalar.
func (s *Scalar) UnmarshalBinary(data []byte) error { return s.SetBigEndian(data) }

// MarshalBinary implements encoding.BinaryMarshaler for Point.
func (p *Point) MarshalBinary() ([]byte, error) { return p.ToCompressed(), nil }

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Point.
func (p *Point) UnmarshalBinary(data []byte) error { return p.SetBytes(data) }
