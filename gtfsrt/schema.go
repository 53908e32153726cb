package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/bufbuild/protocompile"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	extendedProtoFile  = "gtfs-realtime-MTARR.proto"
	genericProtoFile   = "gtfs-realtime.proto"
	trackExtensionName = "transit_realtime.mta_railroad_stop_time_update"
)

// Schema selects how raw feed bytes are parsed. The generic schema relies on
// the public GTFS-Realtime bindings alone; the extended schema additionally
// resolves the commuter-rail track-assignment extension compiled at runtime
// from the locally cached proto files.
type Schema struct {
	types *dynamicpb.Types
	track protoreflect.ExtensionType
}

// Generic returns the schema shared by all sub-systems.
func Generic() *Schema { return &Schema{} }

// Extended reports whether this schema resolves the track extension.
func (s *Schema) Extended() bool { return s.track != nil }

// LoadExtended compiles the commuter-rail extended schema from protoDir.
// The extended file imports the generic schema by relative name; the import
// is resolved to the locally cached copy, never the network. Any failure
// (file absent, parse error, unresolved import, missing extension) is
// returned to the caller, which decides whether to fall back.
func LoadExtended(ctx context.Context, protoDir string) (*Schema, error) {
	if _, err := os.Stat(filepath.Join(protoDir, extendedProtoFile)); err != nil {
		return nil, fmt.Errorf("extended schema unavailable: %w", err)
	}

	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: func(path string) (io.ReadCloser, error) {
				// Flatten every import to the cached proto directory, so
				// "gtfs-realtime.proto" resolves locally.
				return os.Open(filepath.Join(protoDir, filepath.Base(path)))
			},
		}),
	}
	compiled, err := compiler.Compile(ctx, extendedProtoFile)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", extendedProtoFile, err)
	}

	registry := new(protoregistry.Files)
	for _, fd := range compiled {
		if err := registerFileTree(registry, fd); err != nil {
			return nil, err
		}
	}

	desc, err := registry.FindDescriptorByName(protoreflect.FullName(trackExtensionName))
	if err != nil {
		return nil, fmt.Errorf("extension %s not found in %s: %w", trackExtensionName, extendedProtoFile, err)
	}
	xd, ok := desc.(protoreflect.ExtensionDescriptor)
	if !ok {
		return nil, fmt.Errorf("%s is not an extension", trackExtensionName)
	}

	return &Schema{
		types: dynamicpb.NewTypes(registry),
		track: dynamicpb.NewExtensionType(xd),
	}, nil
}

// registerFileTree registers a file descriptor and its imports, skipping
// files already present.
func registerFileTree(registry *protoregistry.Files, fd protoreflect.FileDescriptor) error {
	for i := 0; i < fd.Imports().Len(); i++ {
		if err := registerFileTree(registry, fd.Imports().Get(i).FileDescriptor); err != nil {
			return err
		}
	}
	if _, err := registry.FindFileByPath(fd.Path()); err == nil {
		return nil
	}
	return registry.RegisterFile(fd)
}

// unmarshal parses raw bytes into the generic message type, resolving
// extension fields when this schema carries the extended types.
func (s *Schema) unmarshal(raw []byte) (*gtfsrtpb.FeedMessage, error) {
	opts := proto.UnmarshalOptions{}
	if s.types != nil {
		opts.Resolver = s.types
	}
	var fm gtfsrtpb.FeedMessage
	if err := opts.Unmarshal(raw, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

// Track reads the track label from the extension on a stop time update.
// Returns "" for the generic schema or when the extension is absent.
//
// The extension descriptor comes from the runtime-compiled schema, not the
// generated bindings, so proto.GetExtension cannot see the populated value
// (it matches descriptors by identity). Walk the populated fields by number
// instead.
func (s *Schema) Track(stu *gtfsrtpb.TripUpdate_StopTimeUpdate) string {
	if s.track == nil || stu == nil {
		return ""
	}
	number := s.track.TypeDescriptor().Number()
	var track string
	stu.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if !fd.IsExtension() || fd.Number() != number || fd.Kind() != protoreflect.MessageKind {
			return true
		}
		msg := v.Message()
		tf := msg.Descriptor().Fields().ByName("track")
		if tf != nil && tf.Kind() == protoreflect.StringKind && msg.Has(tf) {
			track = msg.Get(tf).String()
		}
		return false
	})
	return track
}

// Resolver hands out the schema for a sub-system. Extended-schema loading is
// best-effort: failures are logged and downgrade to the generic schema, never
// surfaced to the caller.
type Resolver struct {
	protoDir string
}

// NewResolver creates a Resolver reading cached schema files from protoDir.
func NewResolver(protoDir string) *Resolver {
	return &Resolver{protoDir: protoDir}
}

// SchemaFor returns the schema to decode the given sub-system's feed with.
func (r *Resolver) SchemaFor(ctx context.Context, system string) *Schema {
	if !PolicyFor(system).TrackExtension {
		return Generic()
	}
	schema, err := LoadExtended(ctx, r.protoDir)
	if err != nil {
		log.Warn().Err(err).Str("system", system).Msg("falling back to generic GTFS-RT schema")
		return Generic()
	}
	return schema
}
