package validation

import "testing"

func TestValidateMediaURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https url", "https://cdn.example.com/booking.pdf", false},
		{"http url", "http://cdn.example.com/a.png?x=1", false},
		{"surrounding spaces", "  https://cdn.example.com/a.png ", false},
		{"empty", "   ", true},
		{"local path", "/etc/passwd", true},
		{"file scheme", "file:///etc/passwd", true},
		{"relative", "images/a.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMediaURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
