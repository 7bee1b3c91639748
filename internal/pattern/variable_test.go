package pattern

import "testing"

func TestParseVariables(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    []Variable
		wantErr bool
	}{
		{
			name:   "no variables",
			source: "ret",
			want:   nil,
		},
		{
			name:   "single number variable",
			source: "lea rbp,[rip + $num:disp]",
			want:   []Variable{{Name: "disp", Type: Number}},
		},
		{
			name:   "register reused twice",
			source: "xchg $reg:r,[$reg:r + $num:n]",
			want: []Variable{
				{Name: "r", Type: Register},
				{Name: "r", Type: Register},
				{Name: "n", Type: Number},
			},
		},
		{
			name:   "length variable",
			source: "nop $len:padding",
			want:   []Variable{{Name: "padding", Type: Length}},
		},
		{
			name:    "unknown tag",
			source:  "mov eax, $weird:x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVariables(tt.source)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d variables, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("variable %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVariableString(t *testing.T) {
	v := Variable{Name: "disp", Type: Number}
	if got, want := v.String(), "$num:disp"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
