package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderFlag_Set(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    ProviderFlag
		wantErr bool
	}{
		{
			name:  "ollama",
			value: "ollama",
			want:  ProviderFlag("ollama"),
		},
		{
			name:  "anthropic",
			value: "anthropic",
			want:  ProviderFlag("anthropic"),
		},
		{
			name:    "invalid value",
			value:   "mystery",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flag ProviderFlag
			err := flag.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid value")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, flag)
		})
	}
}

func TestNewAdminCommand(t *testing.T) {
	cmd := newAdminCommand()

	assert.Equal(t, "admin", cmd.Use)
	assert.True(t, cmd.HasSubCommands())

	create, _, err := cmd.Find([]string{"create-config"})
	assert.NoError(t, err)
	assert.NotNil(t, create.Flags().Lookup("provider"))
	assert.NotNil(t, create.Flags().Lookup("api-key"))
}
