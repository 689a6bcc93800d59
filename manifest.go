package mapreduce

import (
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SuccessFile marks a committed output directory and carries its manifest.
const SuccessFile = "_SUCCESS"

func writeManifest(dir string, fields map[string]interface{}) error {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, SuccessFile), b, 0o644)
}

// ReadManifest decodes the _SUCCESS manifest of a committed output.
func ReadManifest(dir string) (*structpb.Struct, error) {
	b, err := os.ReadFile(filepath.Join(dir, SuccessFile))
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", dir, err)
	}
	return s, nil
}
