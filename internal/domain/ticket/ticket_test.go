package ticket

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ticket  Ticket
		wantErr bool
	}{
		{
			name:    "valid ticket",
			ticket:  Ticket{Key: "OPS-1", Summary: "Broken deploy"},
			wantErr: false,
		},
		{
			name:    "missing key",
			ticket:  Ticket{Summary: "Broken deploy"},
			wantErr: true,
		},
		{
			name:    "missing summary",
			ticket:  Ticket{Key: "OPS-1"},
			wantErr: true,
		},
		{
			name:    "whitespace key",
			ticket:  Ticket{Key: "   ", Summary: "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ticket.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchesAssignee(t *testing.T) {
	assigned := Ticket{
		Key:     "OPS-1",
		Summary: "s",
		Assignee: &User{
			DisplayName:  "Jane Doe",
			EmailAddress: "jane@x.com",
		},
	}
	unassigned := Ticket{Key: "OPS-2", Summary: "s"}

	tests := []struct {
		name       string
		ticket     Ticket
		identifier string
		want       bool
	}{
		{"email exact match", assigned, "jane@x.com", true},
		{"email case-insensitive", assigned, "jane@X.com", true},
		{"display name exact match", assigned, "Jane Doe", true},
		{"display name case-insensitive", assigned, "jane doe", true},
		{"no partial match", assigned, "J. Doe", false},
		{"wrong email", assigned, "john@x.com", false},
		{"unassigned never matches", unassigned, "jane@x.com", false},
		{"empty identifier", assigned, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.MatchesAssignee(tt.identifier); got != tt.want {
				t.Errorf("MatchesAssignee(%q) = %v, want %v", tt.identifier, got, tt.want)
			}
		})
	}
}

func TestNameDefaults(t *testing.T) {
	tk := Ticket{Key: "OPS-1", Summary: "s"}

	if got := tk.AssigneeName(); got != UnknownUser {
		t.Errorf("AssigneeName() = %q, want %q", got, UnknownUser)
	}
	if got := tk.ReporterName(); got != UnknownUser {
		t.Errorf("ReporterName() = %q, want %q", got, UnknownUser)
	}

	tk.Reporter = &User{DisplayName: "Sam Smith"}
	if got := tk.ReporterName(); got != "Sam Smith" {
		t.Errorf("ReporterName() = %q, want %q", got, "Sam Smith")
	}
}

func TestStringField(t *testing.T) {
	tk := Ticket{
		Key:     "OPS-1",
		Summary: "s",
		Extra: map[string]any{
			"customfield_12286": "escalation notes",
			"priority":          3,
			"empty":             nil,
		},
	}

	if got := tk.StringField("customfield_12286"); got != "escalation notes" {
		t.Errorf("StringField() = %q", got)
	}
	if got := tk.StringField("priority"); got != "3" {
		t.Errorf("StringField() = %q, want stringified value", got)
	}
	if got := tk.StringField("empty"); got != "" {
		t.Errorf("StringField() = %q, want empty for nil", got)
	}
	if got := tk.StringField("absent"); got != "" {
		t.Errorf("StringField() = %q, want empty for absent", got)
	}
}
