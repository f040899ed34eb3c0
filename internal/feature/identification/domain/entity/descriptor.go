// Package entity はidentificationフィーチャーのドメインモデルを定義します。
package entity

import (
	"encoding/binary"
	"math/bits"
)

// DescriptorSize はORB記述子のバイト長（256bit）です。
const DescriptorSize = 32

// Descriptor は特徴点1つ分のバイナリ記述子です。
type Descriptor [DescriptorSize]byte

// Distance は2つの記述子のハミング距離を返します。
func (d Descriptor) Distance(o Descriptor) int {
	n := 0
	for i := 0; i < DescriptorSize; i += 8 {
		n += bits.OnesCount64(binary.LittleEndian.Uint64(d[i:]) ^ binary.LittleEndian.Uint64(o[i:]))
	}
	return n
}

// DescriptorsFromBytes はn×32バイトの連続領域を記述子のスライスに分割します。
// 末尾の端数は無視されます。
func DescriptorsFromBytes(b []byte) []Descriptor {
	out := make([]Descriptor, len(b)/DescriptorSize)
	for i := range out {
		copy(out[i][:], b[i*DescriptorSize:])
	}
	return out
}

// DescriptorsToBytes は記述子を連続したバイト列に詰めます。
func DescriptorsToBytes(ds []Descriptor) []byte {
	out := make([]byte, 0, len(ds)*DescriptorSize)
	for _, d := range ds {
		out = append(out, d[:]...)
	}
	return out
}
