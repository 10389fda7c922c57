// Package serialization saves and loads strided tensors in SafeTensors format.
//
// SafeTensors is the tensor container used by HuggingFace:
//
//	Format Structure:
//	  [8 bytes: Header Size N (uint64 LE)]
//	  [N bytes: JSON header, space padded to a multiple of 8]
//	  [Tensor data: raw little-endian bytes]
//
// Every tensor is written in row-major order regardless of the strides of the
// view being saved, so a transposed or sliced view is stored as the dense
// tensor it represents. Loading always yields freshly allocated, contiguous
// tensors.
//
// The writer records a SHA-256 of the data section under the "sha256"
// metadata key; the reader verifies it when present.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteFile("weights.safetensors",
//	    map[string]*tensor.Tensor[float32]{"w": w, "b": b}, nil)
//
//	// Load
//	tensors, meta, err := serialization.ReadFile[float32]("weights.safetensors")
package serialization
