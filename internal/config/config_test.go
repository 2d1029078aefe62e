package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("ESSCERA_TEST_PORT", "9090")
	assert.Equal(t, 9090, EnvIntDefault("ESSCERA_TEST_PORT", 8080))

	t.Setenv("ESSCERA_TEST_PORT", "not-a-number")
	assert.Equal(t, 8080, EnvIntDefault("ESSCERA_TEST_PORT", 8080))

	assert.Equal(t, 7, EnvIntDefault("ESSCERA_TEST_UNSET", 7))
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("ESSCERA_TEST_FLAG", "true")
	assert.True(t, EnvBoolDefault("ESSCERA_TEST_FLAG", false))

	t.Setenv("ESSCERA_TEST_FLAG", "maybe")
	assert.False(t, EnvBoolDefault("ESSCERA_TEST_FLAG", false))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CSRF_ENABLED", "")
	t.Setenv("BODY_LIMIT", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, []byte("secret"), cfg.JWTSecret)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, "10M", cfg.BodyLimit)

	t.Setenv("APP_ENV", "Production")
	assert.True(t, Load().Production())
}
