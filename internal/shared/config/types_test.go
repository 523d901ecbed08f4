package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	tests := []struct {
		name       string
		cfg        DatabaseConfig
		wantDriver string
		wantDSN    string
	}{
		{
			name:       "mysql default",
			cfg:        DatabaseConfig{Host: "db", Port: 3306, Username: "u", Password: "p", Database: "vouchers"},
			wantDriver: "mysql",
			wantDSN:    "u:p@tcp(db:3306)/vouchers?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name:       "postgres",
			cfg:        DatabaseConfig{Driver: "PostgreSQL", Host: "db", Port: 5432, Username: "u", Password: "p", Database: "vouchers"},
			wantDriver: "postgres",
			wantDSN:    "host=db port=5432 user=u password=p dbname=vouchers sslmode=disable TimeZone=UTC",
		},
		{
			name:       "sqlite memory",
			cfg:        DatabaseConfig{Driver: "sqlite3", Database: ":memory:"},
			wantDriver: "sqlite",
			wantDSN:    ":memory:",
		},
		{
			name:       "sqlite default file",
			cfg:        DatabaseConfig{Driver: "sqlite"},
			wantDriver: "sqlite",
			wantDSN:    "voucherd.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDriver, tt.cfg.GetDriver())
			assert.Equal(t, tt.wantDSN, tt.cfg.GetDSN())
		})
	}
}

func TestServerConfig_GetAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", s.GetAddr())
}
