// Package file contains utilities related to file operations (e.g. reading files).
package file

import (
	"bufio"
	"os"
	"strings"

	"playlistarr/internal/utils/logging"
	"playlistarr/internal/validation"

	"github.com/spf13/viper"
)

// LoadConfigFile loads in the preset configuration file.
func LoadConfigFile(v *viper.Viper, file string) error {
	if _, err := validation.ValidateFile(file, false); err != nil {
		return err
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return nil
}

// ReadFileLines loads lines from a file (one per line, ignoring '#' comment lines).
func ReadFileLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.E(0, "failed to close file %v due to error: %v", path, err)
		}
	}()

	f := []string{}
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue // skip blank lines and comments
		}
		f = append(f, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return f, nil
}
