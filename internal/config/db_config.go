package config

import (
	"fmt"
)

type driver string

const (
	DriverSqlite    driver = "sqlite"
	DriverFirestore driver = "firestore"
)

type DBConfig struct {
	Driver                   driver `mapstructure:"driver"`
	ConnectionString         string `mapstructure:"connection_string"`
	FirestoreProjectID       string `mapstructure:"firestore_project_id"`
	FirestoreCredentialsFile string `mapstructure:"firestore_credentials_file"`
}

// ConnectionString is always required: the sqlite database also holds the credential accounts.
func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}

	switch config.Driver {
	case DriverSqlite:
	case DriverFirestore:
		if config.FirestoreProjectID == "" {
			return fmt.Errorf("missing variable: firestore_project_id")
		}
	default:
		return fmt.Errorf("unknown db driver: %s", config.Driver)
	}

	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"db.driver":                     "DB_DRIVER",
		"db.connection_string":          "DB_CONNECTION_STRING",
		"db.firestore_project_id":       "FIRESTORE_PROJECT_ID",
		"db.firestore_credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
	})
}
