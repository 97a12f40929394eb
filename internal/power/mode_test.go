package power

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "performance", want: Performance},
		{in: " Balanced\n", want: Balanced},
		{in: "power-saver", want: PowerSaver},
		{in: "powersave", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnknownIsNotValid(t *testing.T) {
	if Unknown.Valid() {
		t.Fatal("Unknown.Valid() = true, want false")
	}
}
