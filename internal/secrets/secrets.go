// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads operator credentials and contact details from a
// directory of plain-text files. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported key files: contact-email (appended to the User-Agent so the
// service operator can reach whoever is generating the traffic).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ContactEmailKey is the secrets key holding the operator contact email.
const ContactEmailKey = "contact-email"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// UserAgent returns base with the contact email appended in parentheses
// when one is present in secrets.
func UserAgent(base string, secrets map[string]string) string {
	if email := secrets[ContactEmailKey]; email != "" {
		return fmt.Sprintf("%s (%s)", base, email)
	}
	return base
}
