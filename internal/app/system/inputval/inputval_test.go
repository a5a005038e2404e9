package inputval

import (
	"testing"
	"time"
)

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true},
		{"  507f1f77bcf86cd799439011  ", true},

		{"", false},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd79943901g", false},
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"", true},
		{"user", true},
		{"admin", true},
		{" ADMIN ", true},
		{"superadmin", false},
		{"member", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := IsValidRole(tt.role); got != tt.want {
				t.Errorf("IsValidRole(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-01-01", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2025-01-01T09:30", time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC), false},
		{"2025-01-01T10:00:00", time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"2025-01-01T09:30:00Z", time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC), false},
		{"2025-01-01T09:30:00+02:00", time.Date(2025, 1, 1, 7, 30, 0, 0, time.UTC), false},
		{"2020-02-30", time.Time{}, true},
		{"tomorrow", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,email" label:"Email address"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "John", Email: "john@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "missing both",
			input:      TestInput{Name: "", Email: ""},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type assignInput struct {
		UserIDs []string `json:"userIds" validate:"required,min=1,dive,objectid" label:"User IDs"`
	}
	type taskInput struct {
		Deadline string `json:"deadline" validate:"required,date"`
	}
	type registerInput struct {
		Role string `json:"role" validate:"role" label:"Role"`
	}

	if r := Validate(assignInput{UserIDs: []string{"507f1f77bcf86cd799439011"}}); r.HasErrors() {
		t.Errorf("valid ids: unexpected errors %v", r.Errors)
	}
	if r := Validate(assignInput{UserIDs: []string{"nope"}}); !r.HasErrors() {
		t.Error("invalid id: expected errors")
	}
	if r := Validate(assignInput{}); !r.HasErrors() {
		t.Error("missing ids: expected errors")
	}

	r := Validate(taskInput{Deadline: "soon"})
	if r.First() != "deadline must be a valid date." {
		t.Errorf("date rule: First() = %q", r.First())
	}

	if r := Validate(registerInput{Role: "owner"}); r.First() != `Role must be "user" or "admin".` {
		t.Errorf("role rule: First() = %q", r.First())
	}
}

func TestResult_First(t *testing.T) {
	r := &Result{}
	if r.First() != "" {
		t.Errorf("First() = %q, want empty", r.First())
	}

	r = &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if r.First() != "Error 1" {
		t.Errorf("First() = %q, want %q", r.First(), "Error 1")
	}
}
