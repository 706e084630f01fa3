// Package codec converts sequence items to and from bytes for snapshot storage.
// Each item of a stored sequence is encoded on its own and framed by the store.
package codec

// Codec encodes/decodes one item V.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
