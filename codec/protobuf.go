package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes proto messages. Construct with NewProtobuf; the
// constructor allocates the concrete message for Decode.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *recordpb.Record { return &recordpb.Record{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
