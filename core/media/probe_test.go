package media

import "testing"

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    float64
		wantErr bool
	}{
		{"valid", `{"format":{"duration":"12.345000"}}`, 12.345, false},
		{"integer seconds", `{"format":{"duration":"300"}}`, 300, false},
		{"missing duration", `{"format":{}}`, 0, true},
		{"empty object", `{}`, 0, true},
		{"garbage duration", `{"format":{"duration":"N/A"}}`, 0, true},
		{"not json", `duration=12`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tt.out))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseProbeDuration(%q) expected error, got %v", tt.out, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbeDuration(%q): %v", tt.out, err)
			}
			if got != tt.want {
				t.Errorf("parseProbeDuration(%q) = %v, want %v", tt.out, got, tt.want)
			}
		})
	}
}
