package config

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

// FillFromEnvFile fills empty connection fields from the DB_* keys of a framework
// .env file. Fields already set in the config win.
func (s *SourceConfig) FillFromEnvFile(path string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}

	if s.Type == "" {
		switch env["DB_CONNECTION"] {
		case "pgsql":
			s.Type = "postgresql"
		case "mysql", "mariadb":
			s.Type = "mysql"
		}
	}
	fill(&s.Host, env["DB_HOST"])
	fill(&s.Database, env["DB_DATABASE"])
	fill(&s.Username, env["DB_USERNAME"])
	fill(&s.Password, env["DB_PASSWORD"])
	if s.Port == 0 && env["DB_PORT"] != "" {
		port, err := strconv.Atoi(env["DB_PORT"])
		if err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", env["DB_PORT"], err)
		}
		s.Port = port
	}
	return nil
}

func fill(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
