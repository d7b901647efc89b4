package validator

import (
	"fmt"
	"regexp"
)

// Event names follow the "{entity}.{verb}" convention, e.g. "contact.created".
// The wildcard "*" subscribes to every event for the tenant.
var eventNamePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)+$`)

func ValidateEventName(name string) error {
	if name == "" {
		return fmt.Errorf("event name cannot be empty")
	}
	if name == "*" {
		return nil
	}
	if !eventNamePattern.MatchString(name) {
		return fmt.Errorf("event name must look like \"entity.verb\": %s", name)
	}
	return nil
}

func ValidateEventNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("at least one event name is required")
	}
	for _, name := range names {
		if err := ValidateEventName(name); err != nil {
			return err
		}
	}
	return nil
}
