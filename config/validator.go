package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
)

// profileSchema is the JSON Schema every configured profile must satisfy.
// The structural check runs before profile.Validate so that type mistakes in
// hand-written YAML surface with field-level messages.
const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "url", "api_key"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "url": {"type": "string", "minLength": 1, "pattern": "^https?://"},
    "api_key": {"type": "string", "minLength": 1},
    "organization": {"type": "string"},
    "replicate_organization": {"type": "boolean"},
    "flag": {"type": "string"},
    "field_id": {"type": "string"},
    "name_prefix": {"type": "string"},
    "author": {"type": "string"},
    "predicate": {"type": "string"},
    "propagate_deletions": {"type": "boolean"},
    "extras": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  },
  "additionalProperties": false
}`

var compiledProfileSchema = gojsonschema.NewStringLoader(profileSchema)

// ValidateProfiles checks every profile against the profile schema and the
// profile-level validation rules. Duplicate ids are reported here as well so
// config errors surface before the store is built.
func ValidateProfiles(profiles []profile.Profile) error {
	seen := make(map[string]bool, len(profiles))

	for i := range profiles {
		p := profiles[i]

		doc, err := json.Marshal(p)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "ValidateProfiles", "encode profile")
		}

		result, err := gojsonschema.Validate(compiledProfileSchema, gojsonschema.NewBytesLoader(doc))
		if err != nil {
			return errors.WrapInvalid(err, "Config", "ValidateProfiles", "run profile schema")
		}
		if !result.Valid() {
			var msgs []string
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			return errors.WrapInvalid(
				fmt.Errorf("profile %d (%s): %s", i, p.ID, strings.Join(msgs, "; ")),
				"Config", "ValidateProfiles", "check profile schema")
		}

		p.Normalize()
		if err := p.Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "ValidateProfiles", "validate profile")
		}

		if seen[p.ID] {
			return errors.WrapInvalid(
				fmt.Errorf("duplicate profile id %q", p.ID),
				"Config", "ValidateProfiles", "check profile uniqueness")
		}
		seen[p.ID] = true
	}

	return nil
}
