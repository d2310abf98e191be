package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jasonychoong/retire-server/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		session *Transcript
		wantErr bool
	}{
		{
			name:    "full transcript",
			session: NewTranscript(internal.CreateTestRecord("test1"), internal.CreateTestHistory(), internal.CreateTestMetadata()),
			wantErr: false,
		},
		{
			name:    "empty transcript",
			session: testTranscript("test2", nil),
			wantErr: false,
		},
		{
			name: "transcript with single entry",
			session: testTranscript("test3", []internal.HistoryEntry{
				{
					Role:      internal.RoleUser,
					Content:   "Hello",
					Timestamp: "2026-08-25T12:00:05Z",
				},
			}),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &YAMLExporter{}

			err := exporter.Export(tt.session, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("YAMLExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				output := buf.String()
				// Verify it's valid YAML
				var decoded Transcript
				if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
					t.Errorf("Output is not valid YAML: %v\nOutput: %s", err, output)
					return
				}

				// Verify session ID is present
				if !strings.Contains(output, tt.session.ID) {
					t.Errorf("Output should contain session ID %q", tt.session.ID)
				}
			}
		})
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	exporter := &YAMLExporter{}
	if got := exporter.Extension(); got != "yaml" {
		t.Errorf("YAMLExporter.Extension() = %v, want yaml", got)
	}
}
