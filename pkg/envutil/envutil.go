// From https://github.com/reproducible-containers/repro-get/blob/v0.4.0/pkg/envutil/envutil.go

// Copyright 2025 venslabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package envutil reads flag defaults from the environment before the
// configuration layer is initialized.
package envutil

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Prefix is prepended to every variable name looked up here.
const Prefix = "LICENSEPATCH_"

// Bool returns the boolean value of $LICENSEPATCH_<name>, or defaultValue when
// the variable is unset or not a boolean.
func Bool(name string, defaultValue bool) bool {
	envName := Prefix + name
	v, ok := os.LookupEnv(envName)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Err(err).Str("env", envName).Str("value", v).Msg("failed to parse as a boolean")
		return defaultValue
	}
	return b
}

// String returns $LICENSEPATCH_<name>, or defaultValue when unset or empty.
func String(name, defaultValue string) string {
	if v := os.Getenv(Prefix + name); v != "" {
		return v
	}
	return defaultValue
}
