// Package tengrpc exposes the temporal engine's parse/restrict/synchronize/
// nearest-approach operations as a gRPC service, grounded on the teacher's
// internal/lidar/visualiser gRPC server (service struct wrapping engine
// state, a hand-written grpc.ServiceDesc, RegisterService helper).
//
// The teacher's service messages are generated by protoc from a .proto
// file; that code-generation step isn't available here (no toolchain may
// be run, and protoc/protoc-gen-go aren't part of this module's
// dependency graph). Rather than hand-author a second implementation of
// the protobuf wire format and descriptor machinery, this package
// registers a JSON content-subtype codec with google.golang.org/grpc's
// encoding registry and defines messages as plain JSON-tagged structs.
// Service registration, streaming/unary dispatch, and client/server wiring
// all still go through google.golang.org/grpc exactly as the teacher's
// visualiser service does — only the wire encoding differs.
package tengrpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
