package pkg

import "os"

// Getenv returns the value of the environment variable named by key.
// Unlike os.Getenv an empty value set explicitly is returned as-is;
// defaultValue is used only when the variable is not present at all.
func Getenv(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	return value
}
