package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadDatasetList(t *testing.T) {
	tmpDir := t.TempDir()
	abs := filepath.Join(tmpDir, "elsewhere", "Wordlist-metadata.json")

	tests := []struct {
		name        string
		fileContent string
		want        []string
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace and comments",
			fileContent: "   \n# datasets\n\t\r\n",
			want:        nil,
		},
		{
			name:        "relative paths",
			fileContent: "germanic/Wordlist-metadata.json\nromance/forms.csv\n",
			want: []string{
				filepath.Join(tmpDir, "germanic", "Wordlist-metadata.json"),
				filepath.Join(tmpDir, "romance", "forms.csv"),
			},
		},
		{
			name:        "absolute path with CRLF and padding",
			fileContent: "  " + abs + "  \r\n# skip me\r\n",
			want:        []string{abs},
		},
		{
			name:        "no trailing newline",
			fileContent: "a\nb",
			want:        []string{filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listFile := filepath.Join(tmpDir, "datasets.txt")
			if err := os.WriteFile(listFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create list file: %v", err)
			}

			got, err := ReadDatasetList(listFile)
			if err != nil {
				t.Fatalf("ReadDatasetList() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadDatasetList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadDatasetList_NonExistent(t *testing.T) {
	if _, err := ReadDatasetList(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing list file")
	}
}
