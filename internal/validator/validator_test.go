package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"
)

type providerInput struct {
	Name       string  `json:"name" validate:"required,notblank,max=10"`
	WebsiteUrl *string `json:"website_url" validate:"omitempty,url"`
	ProviderId int     `json:"provider_id" validate:"gt=0"`
	Page       *int    `validate:"omitempty,min=1"`
}

func TestValidator(t *testing.T) {
	badURL := "not a url"
	zero := 0

	tests := []struct {
		name  string
		input providerInput
		want  map[string]string
	}{
		{
			name:  "valid",
			input: providerInput{Name: "Acme", ProviderId: 1},
			want:  map[string]string{},
		},
		{
			name:  "blank name",
			input: providerInput{Name: "   ", ProviderId: 1},
			want:  map[string]string{"name": "must not be blank"},
		},
		{
			name:  "too long and bad url",
			input: providerInput{Name: "Legend Cinema Cambodia", WebsiteUrl: &badURL, ProviderId: 1},
			want: map[string]string{
				"name":        "must be at most 10 characters long",
				"website_url": "must be a valid URL",
			},
		},
		{
			name:  "numeric bounds",
			input: providerInput{Name: "Acme", Page: &zero},
			want: map[string]string{
				"provider_id": "must be greater than 0",
				"Page":        "must be at least 1",
			},
		},
	}

	v := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]string{}

			err := v.Struct(tt.input)

			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				for _, fe := range validationErrors {
					got[fe.Field()] = ValidationMessage(fe)
				}
			} else if err != nil {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("validation messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
