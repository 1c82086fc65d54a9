// Package validation checks the merged homelab configuration for the structure
// documentation templates depend on.
//
// Validate never fails on odd input: every problem, including sections of the
// wrong shape, becomes an entry in the returned list.
package validation

import (
	"fmt"

	"git.home.luguber.info/inful/labdocs/internal/value"
)

// RequiredFields must resolve to a non-null value, in this order.
var RequiredFields = []string{
	"domain.internal",
	"networks",
	"services",
}

// NetworkFields must be present in every network entry.
var NetworkFields = []string{"vlan_id", "subnet", "gateway"}

// ServiceFields must be present in every enabled service entry.
var ServiceFields = []string{"host", "ip"}

// Validate returns every violation found in root, ordered: required fields,
// then networks, then services. An empty result means the configuration is valid.
func Validate(root value.Value) []string {
	v := &configurationValidator{root: root}
	v.validateRequired()
	v.validateNetworks()
	v.validateServices()
	return v.errors
}

// configurationValidator accumulates violations across all sections.
type configurationValidator struct {
	root   value.Value
	errors []string
}

func (cv *configurationValidator) addf(format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Sprintf(format, args...))
}

func (cv *configurationValidator) validateRequired() {
	for _, path := range RequiredFields {
		if _, ok := cv.root.Lookup(path); !ok {
			cv.addf("Missing required field: %s", path)
		}
	}
}

// section returns a present, non-null top-level section. A section that is
// present but not a mapping is reported and skipped.
func (cv *configurationValidator) section(name string) (value.Value, bool) {
	sec, ok := cv.root.Get(name)
	if !ok || sec.IsNull() {
		return value.Null(), false
	}
	if !sec.IsMapping() {
		cv.addf("Field '%s' must be a dictionary", name)
		return value.Null(), false
	}
	return sec, true
}

func (cv *configurationValidator) validateNetworks() {
	networks, ok := cv.section("networks")
	if !ok {
		return
	}
	for _, name := range networks.Keys() {
		network, _ := networks.Get(name)
		if !network.IsMapping() {
			cv.addf("Network '%s' must be a dictionary", name)
			continue
		}
		for _, field := range NetworkFields {
			if !network.Has(field) {
				cv.addf("Network '%s' missing field: %s", name, field)
			}
		}
	}
}

func (cv *configurationValidator) validateServices() {
	services, ok := cv.section("services")
	if !ok {
		return
	}
	for _, name := range services.Keys() {
		service, _ := services.Get(name)
		if !service.IsMapping() {
			continue
		}
		if enabled, _ := service.Get("enabled"); !enabled.Truthy() {
			continue
		}
		for _, field := range ServiceFields {
			if !service.Has(field) {
				cv.addf("Enabled service '%s' missing field: %s", name, field)
			}
		}
	}
}
