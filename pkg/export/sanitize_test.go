package export

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Linux by Zabbix agent", "LinuxbyZabbixagent"},
		{"web-01.example.com", "web-01.example.com"},
		{"Template/OS: Windows (v2)", "TemplateOSWindowsv2"},
		{"snake_case_name", "snake_case_name"},
		{"Zabbix-Server äöü", "Zabbix-Server"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Sanitize(got); again != got {
				t.Errorf("Sanitize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
