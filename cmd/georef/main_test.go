package main

import (
	"flag"
	"io"
	"testing"
)

func TestRecenterRequested(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    bool
		wantErr bool
	}{
		{"none", nil, false, false},
		{"both", []string{"-lat", "34.5", "-lng", "136.5"}, true, false},
		{"origin", []string{"-lat", "0", "-lng", "0"}, true, false},
		{"lat only", []string{"-lat", "0"}, false, true},
		{"lng only", []string{"-lng", "12"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("georef", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.Float64("lat", 0, "")
			fs.Float64("lng", 0, "")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := recenterRequested(fs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
