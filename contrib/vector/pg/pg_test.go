package pg

import (
	"context"
	"testing"
)

func TestTableForCollection(t *testing.T) {
	tests := []struct {
		collection string
		want       string
	}{
		{collection: "radiation-iaea", want: "radiation_iaea"},
		{collection: "radiation-dk-law", want: "radiation_dk_law"},
		{collection: "Radiation-IAEA", want: "radiation_iaea"},
	}
	for _, tt := range tests {
		if got := TableForCollection(tt.collection); got != tt.want {
			t.Errorf("TableForCollection(%q) = %q, want %q", tt.collection, got, tt.want)
		}
	}
}

func TestValidateRejectsUnsafeConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PGVectorConfig
		wantErr bool
	}{
		{name: "default", cfg: *DefaultPGVectorConfig(), wantErr: false},
		{name: "empty dsn", cfg: PGVectorConfig{Dimension: 1024, TableName: "t"}, wantErr: true},
		{name: "zero dimension", cfg: PGVectorConfig{DSN: "x", TableName: "t"}, wantErr: true},
		{name: "injection in table", cfg: PGVectorConfig{DSN: "x", Dimension: 3, TableName: "t; DROP TABLE x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetadataRoundTripKeepsProvenance(t *testing.T) {
	raw, err := encodeMetadata(map[string]any{"source": "bek-669.pdf", "document_type": "Danish law"})
	if err != nil {
		t.Fatalf("encodeMetadata: %v", err)
	}
	meta, err := decodeMetadata(raw)
	if err != nil {
		t.Fatalf("decodeMetadata: %v", err)
	}
	if meta["document_type"] != "Danish law" {
		t.Errorf("unexpected metadata %#v", meta)
	}

	empty, _ := encodeMetadata(nil)
	if string(empty) != "{}" {
		t.Errorf("nil metadata should encode as {}, got %s", empty)
	}
}

func TestNewWithDBRejectsNilPoolAndBadTable(t *testing.T) {
	ctx := context.Background()
	if _, err := NewWithDB(ctx, nil, DefaultPGVectorConfig()); err == nil {
		t.Error("expected error for nil db")
	}
	if err := validateTable(&PGVectorConfig{Dimension: 1024, TableName: "radiation-iaea"}); err == nil {
		t.Error("hyphenated collection names must be mapped with TableForCollection first")
	}
	if err := validateTable(&PGVectorConfig{Dimension: 1024, TableName: TableForCollection("radiation-iaea")}); err != nil {
		t.Errorf("mapped table name rejected: %v", err)
	}
}
