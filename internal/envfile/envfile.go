// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package envfile loads worker environment from dotenv files. Values are
// handed to conversion workers verbatim; everything user-facing reports key
// names only, so credentials never land in logs or progress output.
package envfile

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"
)

// Load parses the dotenv file at path. An empty path means no env file was
// configured and yields an empty map. A path that does not exist or does not
// parse is an error; the worker would otherwise run without the credentials
// the user thought it had.
func Load(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return env, nil
}

// Keys returns the sorted key names of env.
func Keys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
