package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHereDoc(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "basic block",
			in:     "spark-sql <<!\nSELECT 1;\nSELECT 2;\n!\necho done\n",
			want:   "SELECT 1;\nSELECT 2;\n",
			wantOK: true,
		},
		{
			name:   "closer with surrounding spaces",
			in:     "sqlplus <<!\nSELECT 1;\n  !  \n",
			want:   "SELECT 1;\n",
			wantOK: true,
		},
		{
			name:   "no opener",
			in:     "SELECT 1;\nSELECT 2;\n",
			wantOK: false,
		},
		{
			name:   "unclosed block runs to EOF",
			in:     "run <<!\nSELECT 1;\nSELECT 2;",
			want:   "SELECT 1;\nSELECT 2;\n",
			wantOK: true,
		},
		{
			name:   "empty block",
			in:     "run <<!\n!\n",
			wantOK: false,
		},
		{
			name:   "only first block extracted",
			in:     "run <<!\nSELECT 1;\n!\nrun <<!\nSELECT 2;\n!\n",
			want:   "SELECT 1;\n",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHereDoc(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDropDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "probe select dropped",
			in:   "SELECT 'start' FROM DUAL;\nINSERT INTO t VALUES (1);\n",
			want: "INSERT INTO t VALUES (1);\n",
		},
		{
			name: "commit and exit dropped",
			in:   "INSERT INTO t VALUES (1);\nCOMMIT;\nEXIT;\n",
			want: "INSERT INTO t VALUES (1);\n",
		},
		{
			name: "bare commit without semicolon",
			in:   "commit\nexit\nSELECT 1;\n",
			want: "SELECT 1;\n",
		},
		{
			name: "blank lines dropped",
			in:   "\n\nSELECT 1;\n\n",
			want: "SELECT 1;\n",
		},
		{
			name: "case insensitive probe",
			in:   "select 'ok' from dual;\nSELECT 2;\n",
			want: "SELECT 2;\n",
		},
		{
			name: "select without dual kept",
			in:   "SELECT 'x' FROM t;\n",
			want: "SELECT 'x' FROM t;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropDiagnostics(tt.in))
		})
	}
}

func TestApplyBindings(t *testing.T) {
	in := "SELECT * FROM t WHERE d = '${RUN_DATE}'"
	got := ApplyBindings(in, map[string]string{"RUN_DATE": "2024-01-01"})
	assert.Equal(t, in, got)
}
