package configs

import "os"

// Settings holds everything read from the environment. A .env file, if
// present, is loaded by main before this runs.
type Settings struct {
	Port            string
	MongoURI        string
	MongoDBName     string
	CORSOrigins     string
	JWTPublicKeyDir string
	LogLevel        string
	LogMode         string
	ConsulAddress   string
	ServiceName     string
	ServiceAddress  string
}

func Load() Settings {
	return Settings{
		Port:            getEnv("PORT", "8000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "notes"),
		CORSOrigins:     getEnv("BACKEND_CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"),
		JWTPublicKeyDir: getEnv("JWT_PUBLIC_KEY_DIR", "keys"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogMode:         getEnv("LOG_MODE", "production"),
		ConsulAddress:   os.Getenv("CONSUL_ADDRESS"),
		ServiceName:     getEnv("SERVICE_NAME", "notes-api"),
		ServiceAddress:  getEnv("SERVICE_ADDRESS", "localhost"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
